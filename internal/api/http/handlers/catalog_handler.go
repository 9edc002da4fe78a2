package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// CatalogHandler exposes treatment endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func serviceInput(req dto.ServiceRequest) service.ServiceInput {
	return service.ServiceInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Color:           req.Color,
		BranchID:        req.BranchID,
	}
}

// Create handles POST /services.
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.catalog.Create(c.UserContext(), actor, serviceInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": serviceResponse(svc)})
}

// List handles GET /services.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	filter := repository.ServiceFilter{
		BranchID: parseStringQuery(c, "branch_id"),
		Active:   parseBoolQuery(c, "active"),
		Limit:    limit,
		Offset:   offset,
	}
	if typ := c.Query("type"); typ != "" {
		t := domain.ServiceType(typ)
		filter.Type = &t
	}
	services, err := h.catalog.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		resp = append(resp, serviceResponse(&services[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /services/:id.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	svc, err := h.catalog.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Update handles PUT /services/:id.
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.catalog.Update(c.UserContext(), actor, c.Params("id"), serviceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// ToggleStatus handles PATCH /services/:id/toggle-status.
func (h *CatalogHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	svc, err := h.catalog.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(svc)})
}

// Delete handles DELETE /services/:id.
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
