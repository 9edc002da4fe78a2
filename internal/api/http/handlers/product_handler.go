package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// ProductHandler exposes product and bundle ledger endpoints.
type ProductHandler struct {
	products *service.ProductService
	ledger   *service.LedgerService
}

// NewProductHandler constructs handler.
func NewProductHandler(products *service.ProductService, ledger *service.LedgerService) *ProductHandler {
	return &ProductHandler{products: products, ledger: ledger}
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Price:       req.Price,
		BranchID:    req.BranchID,
		ServiceID:   req.ServiceID,
		Quantity:    req.Quantity,
	}
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Create(c.UserContext(), actor, productInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": productResponse(product)})
}

// List handles GET /products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	filter := repository.ProductFilter{
		BranchID: parseStringQuery(c, "branch_id"),
		Active:   parseBoolQuery(c, "active"),
		Limit:    limit,
		Offset:   offset,
	}
	if typ := c.Query("type"); typ != "" {
		t := domain.ProductType(typ)
		filter.Type = &t
	}
	products, err := h.products.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, productResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// Update handles PUT /products/:id.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	product, err := h.products.Update(c.UserContext(), actor, c.Params("id"), productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// ToggleStatus handles PATCH /products/:id/toggle-status.
func (h *ProductHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	product, err := h.products.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": productResponse(product)})
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UseService handles POST /products/:id/use-service.
func (h *ProductHandler) UseService(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UseServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.ledger.UseService(c.UserContext(), actor, service.UseServiceInput{
		ProductID:  c.Params("id"),
		ServiceID:  req.ServiceID,
		Quantity:   req.Quantity,
		CustomerID: req.CustomerID,
		OrderID:    req.OrderID,
		BranchID:   req.BranchID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": useServiceResponse(res)})
}

// Remaining handles GET /products/:id/remaining.
func (h *ProductHandler) Remaining(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	remaining, err := h.ledger.GetRemainingServices(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": remainingResponse(remaining)})
}

// Usages handles GET /products/:id/usages.
func (h *ProductHandler) Usages(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	usages, err := h.ledger.ListUsages(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.ServiceUsageResponse, 0, len(usages))
	for i := range usages {
		resp = append(resp, usageResponse(&usages[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}
