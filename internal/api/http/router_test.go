package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wahid-dev1/semina/internal/api/http/handlers"
	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/events"
	"github.com/wahid-dev1/semina/internal/observability"
	"github.com/wahid-dev1/semina/internal/repository/repofakes"
	"github.com/wahid-dev1/semina/internal/service"
)

const routerPassword = "correct-horse"

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type testServer struct {
	app       *fiber.App
	employees *repofakes.FakeEmployeeRepo
	branches  *repofakes.FakeBranchRepo
	companies *repofakes.FakeCompanyRepo
	products  *repofakes.FakeProductRepo
	hasher    *auth.PasswordHasher
}

func newTestServer(t *testing.T, limit config.RateLimitConfig, deps map[string]handlers.Pinger) *testServer {
	t.Helper()

	employees := repofakes.NewFakeEmployeeRepo()
	customers := repofakes.NewFakeCustomerRepo()
	branches := repofakes.NewFakeBranchRepo()
	companies := repofakes.NewFakeCompanyRepo()
	orders := repofakes.NewFakeOrderRepo()
	products := repofakes.NewFakeProductRepo()
	services := repofakes.NewFakeServiceRepo()
	tx := repofakes.NewFakeTxManager()
	metrics := observability.NewMetrics()

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "router-secret", Issuer: "semina-test", BcryptCost: 4}}
	audit := service.NewAuditService(service.AuditDependencies{
		AuditRepo:  repofakes.NewFakeAuditRepo(),
		Dispatcher: events.NewInMemoryDispatcher(nil),
		Metrics:    metrics,
	})
	authSvc := service.NewAuthService(cfg, service.AuthDependencies{
		EmployeeRepo: employees,
		CustomerRepo: customers,
		SessionRepo:  repofakes.NewFakeSessionRepo(),
		SessionCache: repofakes.NewFakeSessionCache(),
		QRCodeRepo:   repofakes.NewFakeQRCodeRepo(),
		TxManager:    tx,
		Audit:        audit,
		Metrics:      metrics,
	})
	ledger := service.NewLedgerService(service.LedgerDependencies{
		ProductRepo:      products,
		ServiceRepo:      services,
		OrderRepo:        orders,
		ServiceUsageRepo: repofakes.NewFakeServiceUsageRepo(),
		TxManager:        tx,
		Audit:            audit,
		Metrics:          metrics,
	})
	medical := service.NewMedicalFormService(service.MedicalFormDependencies{
		CustomerRepo:       customers,
		BranchRepo:         branches,
		MedicalHistoryRepo: repofakes.NewFakeMedicalHistoryRepo(),
		Auth:               authSvc,
		TxManager:          tx,
		Audit:              audit,
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("semina", "test", deps),
		Auth:   handlers.NewAuthHandler(authSvc),
		Tenants: handlers.NewTenantHandler(service.NewTenantService(service.TenantDependencies{
			CompanyRepo: companies,
			BranchRepo:  branches,
			Audit:       audit,
		})),
		Employees: handlers.NewEmployeeHandler(service.NewEmployeeService(service.EmployeeDependencies{
			EmployeeRepo: employees,
			BranchRepo:   branches,
			OrderRepo:    orders,
			Hasher:       authSvc.Hasher(),
			Audit:        audit,
		})),
		Customers: handlers.NewCustomerHandler(service.NewCustomerService(service.CustomerDependencies{
			CustomerRepo: customers,
			BranchRepo:   branches,
			OrderRepo:    orders,
			Audit:        audit,
		}), authSvc, medical),
		Catalog: handlers.NewCatalogHandler(service.NewCatalogService(service.CatalogDependencies{
			ServiceRepo: services,
			BranchRepo:  branches,
			OrderRepo:   orders,
			TxManager:   tx,
			Audit:       audit,
		})),
		Products: handlers.NewProductHandler(service.NewProductService(service.ProductDependencies{
			ProductRepo: products,
			ServiceRepo: services,
			BranchRepo:  branches,
			OrderRepo:   orders,
			Audit:       audit,
		}), ledger),
		Orders: handlers.NewOrderHandler(service.NewOrderService(service.OrderDependencies{
			OrderRepo:    orders,
			CustomerRepo: customers,
			ProductRepo:  products,
			ServiceRepo:  services,
			Audit:        audit,
		}), ledger),
		Subscriptions: handlers.NewSubscriptionHandler(service.NewSubscriptionService(service.SubscriptionDependencies{
			SubscriptionRepo: repofakes.NewFakeSubscriptionRepo(),
			CompanyRepo:      companies,
			BranchRepo:       branches,
			ProductRepo:      products,
			TxManager:        tx,
			Audit:            audit,
		})),
		Audit:          handlers.NewAuditHandler(audit),
		MedicalForm:    handlers.NewMedicalFormHandler(medical),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc),
		Metrics:        metrics,
		RateLimit:      limit,
	})

	return &testServer{
		app:       app,
		employees: employees,
		branches:  branches,
		companies: companies,
		products:  products,
		hasher:    authSvc.Hasher(),
	}
}

func (s *testServer) seedEmployee(t *testing.T, email string, role domain.StaffRole) {
	t.Helper()
	branch := &domain.Branch{Name: "Main", Enabled: true}
	require.NoError(t, s.branches.Create(context.Background(), branch))
	hash, err := s.hasher.Hash(routerPassword)
	require.NoError(t, err)
	scope, err := domain.NewStaffScope(role, branch.ID)
	require.NoError(t, err)
	require.NoError(t, s.employees.Create(context.Background(), &domain.Employee{
		Username:     email,
		Firstname:    "Rita",
		Email:        email,
		PasswordHash: hash,
		PersonalPin:  "1234",
		Scope:        scope,
		Enabled:      true,
	}))
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": routerPassword})
	require.Equal(t, fiber.StatusOK, status, body)
	data := body["data"].(map[string]any)
	token, _ := data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{}, nil)
	srv.seedEmployee(t, "rita@example.com", domain.RoleManager)
	token := srv.login(t, "rita@example.com")

	status, body := srv.do(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "rita@example.com", body["data"].(map[string]any)["email"])

	status, _ = srv.do(t, fiber.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, fiber.StatusNoContent, status)

	status, body = srv.do(t, fiber.MethodGet, "/auth/me", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))
}

func TestFailedLoginUsesErrorEnvelope(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{}, nil)
	srv.seedEmployee(t, "rita@example.com", domain.RoleManager)

	status, body := srv.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "rita@example.com", "password": "nope"})
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))
	require.EqualValues(t, fiber.StatusUnauthorized, body["error"].(map[string]any)["status"])

	status, body = srv.do(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": ""})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestStaffRoutesRequireRole(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{}, nil)
	srv.seedEmployee(t, "op@example.com", domain.RoleOperator)
	token := srv.login(t, "op@example.com")

	status, _ := srv.do(t, fiber.MethodGet, "/customers", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, body := srv.do(t, fiber.MethodPost, "/companies", token, map[string]string{"name": "Acme"})
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodGet, "/customers", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Empty(t, body["data"])
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: true, PerSecond: 0.001, Burst: 1}, nil)
	creds := map[string]string{"email": "nobody@example.com", "password": "whatever-pass"}

	status, _ := srv.do(t, fiber.MethodPost, "/auth/login", "", creds)
	require.Equal(t, fiber.StatusUnauthorized, status)

	status, body := srv.do(t, fiber.MethodPost, "/auth/login", "", creds)
	require.Equal(t, fiber.StatusTooManyRequests, status)
	require.Equal(t, "TOO_MANY_REQUESTS", errorCode(body))
}

func TestPublicEndpoints(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{}, map[string]handlers.Pinger{
		"postgres": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	})

	status, body := srv.do(t, fiber.MethodGet, "/health/live", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "alive", body["status"])

	status, body = srv.do(t, fiber.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusServiceUnavailable, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	require.Equal(t, "ok", details["postgres"])
	require.Equal(t, "connection refused", details["redis"])

	status, body = srv.do(t, fiber.MethodGet, "/medical-form/options", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Contains(t, body["data"], "branches")

	status, _ = srv.do(t, fiber.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = srv.do(t, fiber.MethodGet, "/does-not-exist", "", nil)
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestSubscriptionRoutes(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{}, nil)
	srv.seedEmployee(t, "boss@example.com", domain.RoleSuperAdmin)
	srv.seedEmployee(t, "op@example.com", domain.RoleOperator)
	boss := srv.login(t, "boss@example.com")
	op := srv.login(t, "op@example.com")

	company := &domain.Company{Name: "Acme", ContactPerson: "Ada", Email: "acme@example.com", Enabled: true}
	require.NoError(t, srv.companies.Create(context.Background(), company))
	product := &domain.Product{Name: "Day pass", Type: domain.ProductTypeService, Price: 20, Active: true, BranchID: "b-1"}
	require.NoError(t, srv.products.Create(context.Background(), product))

	payload := map[string]any{
		"company_id":  company.ID,
		"product_ids": []string{product.ID},
		"start_date":  "2026-01-01",
		"end_date":    "2026-06-30",
	}
	status, body := srv.do(t, fiber.MethodPost, "/subscriptions", op, payload)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = srv.do(t, fiber.MethodPost, "/subscriptions", boss, payload)
	require.Equal(t, fiber.StatusCreated, status, body)
	created := body["data"].(map[string]any)
	require.Equal(t, company.ID, created["company_id"])
	require.Equal(t, true, created["active"])

	payload["start_date"] = "2026-06-01"
	payload["end_date"] = "2026-12-31"
	status, body = srv.do(t, fiber.MethodPost, "/subscriptions", boss, payload)
	require.Equal(t, fiber.StatusConflict, status)
	require.Equal(t, "CONFLICT", errorCode(body))

	status, body = srv.do(t, fiber.MethodPatch, "/subscriptions/"+created["id"].(string)+"/toggle-status", boss, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, false, body["data"].(map[string]any)["active"])

	status, body = srv.do(t, fiber.MethodGet, "/subscriptions/stats", boss, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := body["data"].(map[string]any)
	require.EqualValues(t, 1, stats["total_subscriptions"])
	require.EqualValues(t, 1, stats["inactive_subscriptions"])
}
