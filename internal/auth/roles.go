package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// RequireEmployee ensures a staff principal is authenticated.
func RequireEmployee() fiber.Handler {
	return RequireStaffRole()
}

// RequireCustomer ensures a customer principal is authenticated.
func RequireCustomer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Kind != domain.PrincipalCustomer {
			return apperrors.NewForbidden("customer required")
		}
		return c.Next()
	}
}

// RequireStaffRole ensures the staff principal has one of the allowed roles.
// With no roles given any employee passes.
func RequireStaffRole(allowed ...domain.StaffRole) fiber.Handler {
	allowedSet := make(map[domain.StaffRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Kind != domain.PrincipalEmployee {
			return apperrors.NewForbidden("staff role required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
