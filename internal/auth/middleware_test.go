package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/wahid-dev1/semina/internal/domain"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

type stubValidator struct {
	principal *domain.PrincipalContext
}

func (s stubValidator) ValidateBearer(_ context.Context, token string) (*domain.PrincipalContext, error) {
	if token != "good" || s.principal == nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}
	return s.principal, nil
}

func newTestApp(principal *domain.PrincipalContext, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var de *apperrors.DomainError
			if errors.As(err, &de) {
				return c.Status(de.HTTPStatus).SendString(de.Code)
			}
			return c.Status(http.StatusInternalServerError).SendString(err.Error())
		},
	})
	mw := NewAuthMiddleware(stubValidator{principal: principal})
	handlers := append([]fiber.Handler{mw.Handle}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString(p.SubjectID)
	})
	app.Get("/me", handlers...)
	return app
}

func doGet(t *testing.T, app *fiber.App, header string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	employee := &domain.PrincipalContext{SubjectID: "e1", Kind: domain.PrincipalEmployee, Role: domain.RoleOperator, BranchID: "b1", SessionID: "s1"}
	app := newTestApp(employee)

	require.Equal(t, http.StatusUnauthorized, doGet(t, app, ""))
	require.Equal(t, http.StatusUnauthorized, doGet(t, app, "Basic abc"))
	require.Equal(t, http.StatusUnauthorized, doGet(t, app, "Bearer bad"))
	require.Equal(t, http.StatusOK, doGet(t, app, "Bearer good"))
}

func TestRoleGuards(t *testing.T) {
	operator := &domain.PrincipalContext{SubjectID: "e1", Kind: domain.PrincipalEmployee, Role: domain.RoleOperator, BranchID: "b1", SessionID: "s1"}
	customer := &domain.PrincipalContext{SubjectID: "c1", Kind: domain.PrincipalCustomer, BranchID: "b1", SessionID: "s2"}

	require.Equal(t, http.StatusForbidden, doGet(t, newTestApp(operator, RequireStaffRole(domain.RoleAdmin)), "Bearer good"))
	require.Equal(t, http.StatusOK, doGet(t, newTestApp(operator, RequireStaffRole(domain.RoleAdmin, domain.RoleOperator)), "Bearer good"))
	require.Equal(t, http.StatusForbidden, doGet(t, newTestApp(customer, RequireEmployee()), "Bearer good"))
	require.Equal(t, http.StatusOK, doGet(t, newTestApp(customer, RequireCustomer()), "Bearer good"))
	require.Equal(t, http.StatusForbidden, doGet(t, newTestApp(operator, RequireCustomer()), "Bearer good"))
}
