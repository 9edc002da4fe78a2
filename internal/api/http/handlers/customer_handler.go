package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// CustomerHandler exposes customer endpoints, including QR issuance and the
// stored intake form.
type CustomerHandler struct {
	customers *service.CustomerService
	auth      *service.AuthService
	medical   *service.MedicalFormService
}

// NewCustomerHandler constructs handler.
func NewCustomerHandler(customers *service.CustomerService, authService *service.AuthService, medical *service.MedicalFormService) *CustomerHandler {
	return &CustomerHandler{customers: customers, auth: authService, medical: medical}
}

func customerInput(req dto.CustomerRequest) service.CustomerInput {
	return service.CustomerInput{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Phone:     req.Phone,
		BranchID:  req.BranchID,
	}
}

// Create handles POST /customers.
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Create(c.UserContext(), actor, customerInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": customerResponse(customer)})
}

// List handles GET /customers.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	filter := repository.CustomerFilter{
		BranchID: parseStringQuery(c, "branch_id"),
		Search:   c.Query("search"),
		Enabled:  parseBoolQuery(c, "enabled"),
		Limit:    limit,
		Offset:   offset,
	}
	customers, err := h.customers.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		resp = append(resp, customerResponse(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /customers/:id.
func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// Update handles PUT /customers/:id.
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.customers.Update(c.UserContext(), actor, c.Params("id"), customerInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// ToggleStatus handles PATCH /customers/:id/toggle-status.
func (h *CustomerHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

// Delete handles DELETE /customers/:id.
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateQRCode handles POST /customers/:id/qr-code.
func (h *CustomerHandler) GenerateQRCode(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	qr, err := h.auth.GenerateQRCode(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": qrCodeResponse(qr)})
}

// MedicalHistory handles GET /customers/:id/medical-history.
func (h *CustomerHandler) MedicalHistory(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	history, err := h.medical.GetHistory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": medicalHistoryResponse(history)})
}
