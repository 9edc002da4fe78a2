package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// BearerValidator resolves an access credential to a principal.
type BearerValidator interface {
	ValidateBearer(ctx context.Context, accessToken string) (*domain.PrincipalContext, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	validator BearerValidator
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(validator BearerValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := BearerToken(c)
	if err != nil {
		return err
	}

	principal, err := m.validator.ValidateBearer(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// BearerToken extracts the credential from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*domain.PrincipalContext, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.PrincipalContext)
	return principal, ok
}
