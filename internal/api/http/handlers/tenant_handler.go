package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// TenantHandler exposes company and branch endpoints.
type TenantHandler struct {
	tenants *service.TenantService
}

// NewTenantHandler constructs handler.
func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

func companyInput(req dto.CompanyRequest) service.CompanyInput {
	return service.CompanyInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
}

func branchInput(req dto.BranchRequest) service.BranchInput {
	return service.BranchInput{
		CompanyID:       req.CompanyID,
		Name:            req.Name,
		ContactPerson:   req.ContactPerson,
		Email:           req.Email,
		Phone:           req.Phone,
		Street:          req.Street,
		Postcode:        req.Postcode,
		City:            req.City,
		Country:         req.Country,
		Timezone:        req.Timezone,
		VisibleToOthers: req.VisibleToOthers,
	}
}

// CreateCompany handles POST /companies.
func (h *TenantHandler) CreateCompany(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	company, err := h.tenants.CreateCompany(c.UserContext(), actor, companyInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// ListCompanies handles GET /companies.
func (h *TenantHandler) ListCompanies(c *fiber.Ctx) error {
	_, _, limit, offset := pagination(c)
	companies, err := h.tenants.ListCompanies(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.CompanyResponse, 0, len(companies))
	for i := range companies {
		resp = append(resp, companyResponse(&companies[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetCompany handles GET /companies/:id.
func (h *TenantHandler) GetCompany(c *fiber.Ctx) error {
	company, err := h.tenants.GetCompany(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// UpdateCompany handles PUT /companies/:id.
func (h *TenantHandler) UpdateCompany(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	company, err := h.tenants.UpdateCompany(c.UserContext(), actor, c.Params("id"), companyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// ToggleCompany handles PATCH /companies/:id/toggle-status.
func (h *TenantHandler) ToggleCompany(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	company, err := h.tenants.ToggleCompany(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// CreateBranch handles POST /branches.
func (h *TenantHandler) CreateBranch(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.BranchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	branch, err := h.tenants.CreateBranch(c.UserContext(), actor, branchInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": branchResponse(branch)})
}

// ListBranches handles GET /branches.
func (h *TenantHandler) ListBranches(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	filter := repository.BranchFilter{
		CompanyID: parseStringQuery(c, "company_id"),
		Enabled:   parseBoolQuery(c, "enabled"),
		Limit:     limit,
		Offset:    offset,
	}
	branches, err := h.tenants.ListBranches(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		resp = append(resp, branchResponse(&branches[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// PublicBranches handles GET /branches/public.
func (h *TenantHandler) PublicBranches(c *fiber.Ctx) error {
	branches, err := h.tenants.PublicBranches(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.PublicBranchResponse, 0, len(branches))
	for _, b := range branches {
		resp = append(resp, dto.PublicBranchResponse{ID: b.ID, Name: b.Name, City: b.City, Phone: b.Phone, Email: b.Email})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetBranch handles GET /branches/:id.
func (h *TenantHandler) GetBranch(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	branch, err := h.tenants.GetBranch(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// UpdateBranch handles PUT /branches/:id.
func (h *TenantHandler) UpdateBranch(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.BranchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	branch, err := h.tenants.UpdateBranch(c.UserContext(), actor, c.Params("id"), branchInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// ToggleBranch handles PATCH /branches/:id/toggle-status.
func (h *TenantHandler) ToggleBranch(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	branch, err := h.tenants.ToggleBranch(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}
