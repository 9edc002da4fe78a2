package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// OrderHandler exposes order endpoints.
type OrderHandler struct {
	orders *service.OrderService
	ledger *service.LedgerService
}

// NewOrderHandler constructs handler.
func NewOrderHandler(orders *service.OrderService, ledger *service.LedgerService) *OrderHandler {
	return &OrderHandler{orders: orders, ledger: ledger}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		return err
	}
	order, err := h.orders.Create(c.UserContext(), actor, service.OrderCreateInput{
		CustomerID:      req.CustomerID,
		BranchID:        req.BranchID,
		ItemType:        req.ItemType,
		ServiceID:       req.ServiceID,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		Price:           req.Price,
		PaymentMethod:   req.PaymentMethod,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": orderResponse(order)})
}

// List handles GET /orders.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, pageSize, limit, offset := pagination(c)
	filter := repository.OrderFilter{
		BranchID:   parseStringQuery(c, "branch_id"),
		CustomerID: parseStringQuery(c, "customer_id"),
		EmployeeID: parseStringQuery(c, "employee_id"),
		ProductID:  parseStringQuery(c, "product_id"),
		ServiceID:  parseStringQuery(c, "service_id"),
		From:       parseTimeQuery(c, "from"),
		To:         parseTimeQuery(c, "to"),
		Limit:      limit,
		Offset:     offset,
	}
	if status := c.Query("status"); status != "" {
		s := domain.OrderStatus(status)
		filter.Status = &s
	}
	orders, total, err := h.orders.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, orderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{
		"data": resp,
		"meta": fiber.Map{"total": total, "page": page, "page_size": pageSize},
	})
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	order, err := h.orders.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// Update handles PUT /orders/:id.
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.OrderUpdateInput{
		Price:           req.Price,
		Quantity:        req.Quantity,
		PaymentMethod:   req.PaymentMethod,
		AppointmentTime: req.AppointmentTime,
		Notes:           req.Notes,
	}
	if req.AppointmentDate != nil {
		date, err := parseDate(*req.AppointmentDate)
		if err != nil {
			return err
		}
		in.AppointmentDate = &date
	}
	order, err := h.orders.Update(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// UpdateStatus handles PATCH /orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateOrderStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orderResponse(order)})
}

// Delete handles DELETE /orders/:id.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.orders.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UseService handles POST /orders/:id/use-service.
func (h *OrderHandler) UseService(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.OrderUseServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.ledger.UseServiceFromOrder(c.UserContext(), actor, c.Params("id"), req.ServiceID, req.Quantity, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": useServiceResponse(res)})
}
