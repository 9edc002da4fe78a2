package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/repository"
	"github.com/wahid-dev1/semina/internal/service"
)

// SubscriptionHandler exposes company subscription endpoints.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler constructs handler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

func optionalDate(val *string) (*time.Time, error) {
	if val == nil {
		return nil, nil
	}
	t, err := parseDate(*val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create handles POST /subscriptions.
func (h *SubscriptionHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateSubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return err
	}
	sub, err := h.subscriptions.Create(c.UserContext(), actor, service.SubscriptionInput{
		CompanyID:  req.CompanyID,
		ProductIDs: req.ProductIDs,
		StartDate:  start,
		EndDate:    end,
		Active:     req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": subscriptionResponse(sub)})
}

// List handles GET /subscriptions.
func (h *SubscriptionHandler) List(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	_, _, limit, offset := pagination(c)
	subs, err := h.subscriptions.List(c.UserContext(), actor, repository.SubscriptionFilter{
		CompanyID: parseStringQuery(c, "company_id"),
		Active:    parseBoolQuery(c, "active"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subscriptionResponses(subs)})
}

// Active handles GET /subscriptions/active/:companyId.
func (h *SubscriptionHandler) Active(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	subs, err := h.subscriptions.ActiveFor(c.UserContext(), actor, c.Params("companyId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subscriptionResponses(subs)})
}

// Stats handles GET /subscriptions/stats.
func (h *SubscriptionHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	stats, err := h.subscriptions.Stats(c.UserContext(), actor, parseStringQuery(c, "company_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionStatsResponse{
		Total:               stats.Total,
		Active:              stats.Active,
		Inactive:            stats.Inactive,
		Current:             stats.Current,
		ExpiringSoon:        stats.ExpiringSoon,
		AverageDurationDays: stats.AverageDurationDays,
	}})
}

// Get handles GET /subscriptions/:id.
func (h *SubscriptionHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	sub, err := h.subscriptions.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subscriptionResponse(sub)})
}

// Update handles PATCH /subscriptions/:id.
func (h *SubscriptionHandler) Update(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateSubscriptionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.SubscriptionUpdateInput{
		CompanyID:  req.CompanyID,
		ProductIDs: req.ProductIDs,
	}
	if in.StartDate, err = optionalDate(req.StartDate); err != nil {
		return err
	}
	if in.EndDate, err = optionalDate(req.EndDate); err != nil {
		return err
	}
	sub, err := h.subscriptions.Update(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subscriptionResponse(sub)})
}

// ToggleStatus handles PATCH /subscriptions/:id/toggle-status.
func (h *SubscriptionHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	sub, err := h.subscriptions.ToggleStatus(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subscriptionResponse(sub)})
}

// Delete handles DELETE /subscriptions/:id.
func (h *SubscriptionHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.subscriptions.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
