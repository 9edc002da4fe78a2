package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// EmployeeHandler exposes staff management endpoints.
type EmployeeHandler struct {
	employees *service.EmployeeService
}

// NewEmployeeHandler constructs handler.
func NewEmployeeHandler(employees *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Create(c.UserContext(), actor, service.EmployeeInput{
		Username:    req.Username,
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		PersonalPin: req.PersonalPin,
		Role:        req.Role,
		BranchID:    req.BranchID,
		Language:    req.Language,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": employeeResponse(employee)})
}

// List handles GET /employees.
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	filter := repository.EmployeeFilter{
		BranchID: parseStringQuery(c, "branch_id"),
		Enabled:  parseBoolQuery(c, "enabled"),
		Limit:    limit,
		Offset:   offset,
	}
	if role := c.Query("role"); role != "" {
		r := domain.StaffRole(role)
		filter.Role = &r
	}
	employees, err := h.employees.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	resp := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, employeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /employees/:id.
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	employee, err := h.employees.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(employee)})
}

// Update handles PUT /employees/:id.
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Update(c.UserContext(), actor, c.Params("id"), service.EmployeeUpdateInput{
		Username:    req.Username,
		Firstname:   req.Firstname,
		Lastname:    req.Lastname,
		Email:       req.Email,
		Phone:       req.Phone,
		Password:    req.Password,
		PersonalPin: req.PersonalPin,
		Role:        req.Role,
		BranchID:    req.BranchID,
		Language:    req.Language,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(employee)})
}

// ToggleStatus handles PATCH /employees/:id/toggle-status.
func (h *EmployeeHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	employee, err := h.employees.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(employee)})
}

// Delete handles DELETE /employees/:id.
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
