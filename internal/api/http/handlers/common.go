package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/service"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

func clientInfo(c *fiber.Ctx) service.ClientInfo {
	return service.ClientInfo{IPAddress: c.IP(), UserAgent: c.Get(fiber.HeaderUserAgent)}
}

func principalFrom(c *fiber.Ctx) (domain.PrincipalContext, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.PrincipalContext{}, apperrors.NewUnauthorized("authentication required")
	}
	return *principal, nil
}

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, err := principalFrom(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.NewActor(principal, clientInfo(c))
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func parseBoolQuery(c *fiber.Ctx, key string) *bool {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseStringQuery(c *fiber.Ctx, key string) *string {
	if val := c.Query(key); val != "" {
		return &val
	}
	return nil
}

// parseTimeQuery accepts RFC3339 or a plain date.
func parseTimeQuery(c *fiber.Ctx, key string) *time.Time {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	if t, err := time.Parse(dateLayout, val); err == nil {
		return &t
	}
	return nil
}

func parseDate(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, val)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", map[string]any{"value": val})
	}
	return t, nil
}

// pagination reads page and page_size and returns limit and offset.
func pagination(c *fiber.Ctx) (page, pageSize, limit, offset int) {
	page = parseIntQuery(c, "page", 1)
	pageSize = parseIntQuery(c, "page_size", 50)
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize, pageSize, (page - 1) * pageSize
}
