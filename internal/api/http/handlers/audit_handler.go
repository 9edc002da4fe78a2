package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// AuditHandler exposes the read side of the audit trail.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func parseAuditFilter(c *fiber.Ctx) repository.AuditFilter {
	filter := repository.AuditFilter{
		Entity:     parseStringQuery(c, "entity"),
		EntityID:   parseStringQuery(c, "entity_id"),
		EmployeeID: parseStringQuery(c, "employee_id"),
		CustomerID: parseStringQuery(c, "customer_id"),
		BranchID:   parseStringQuery(c, "branch_id"),
		From:       parseTimeQuery(c, "from"),
		To:         parseTimeQuery(c, "to"),
	}
	if action := c.Query("action"); action != "" {
		a := domain.AuditAction(action)
		filter.Action = &a
	}
	return filter
}

// List handles GET /audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, pageSize, limit, offset := pagination(c)
	filter := parseAuditFilter(c)
	filter.Limit = limit
	filter.Offset = offset
	records, total, err := h.audit.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []domain.AuditRecord{}
	}
	return c.JSON(fiber.Map{
		"data": records,
		"meta": fiber.Map{"total": total, "page": page, "page_size": pageSize},
	})
}

// Stats handles GET /audit/stats.
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.audit.Stats(c.UserContext(), actor, parseAuditFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
