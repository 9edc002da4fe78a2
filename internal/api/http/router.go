package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/wahid-dev1/semina/internal/api/http/handlers"
	"github.com/wahid-dev1/semina/internal/auth"
	"github.com/wahid-dev1/semina/internal/config"
	"github.com/wahid-dev1/semina/internal/domain"
	"github.com/wahid-dev1/semina/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tenants        *handlers.TenantHandler
	Employees      *handlers.EmployeeHandler
	Customers      *handlers.CustomerHandler
	Catalog        *handlers.CatalogHandler
	Products       *handlers.ProductHandler
	Orders         *handlers.OrderHandler
	Audit          *handlers.AuditHandler
	MedicalForm    *handlers.MedicalFormHandler
	Subscriptions  *handlers.SubscriptionHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	limited := RateLimitMiddleware(cfg.RateLimit)
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/login-qr", limited, cfg.Auth.LoginQR)
	authGroup.Post("/refresh", limited, cfg.Auth.Refresh)

	authed := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authed.Post("/logout", cfg.Auth.Logout)
	authed.Get("/me", cfg.Auth.Me)
	authed.Get("/sessions", cfg.Auth.Sessions)
	authed.Post("/password/change", cfg.Auth.ChangePassword)

	form := app.Group("/medical-form")
	form.Get("/options", cfg.MedicalForm.Options)
	form.Post("/submit", limited, cfg.MedicalForm.Submit)

	app.Get("/branches/public", cfg.Tenants.PublicBranches)

	staff := func(prefix string) fiber.Router {
		return app.Group(prefix, cfg.AuthMiddleware.Handle, auth.RequireEmployee())
	}
	seniorOnly := auth.RequireStaffRole(domain.RoleSuperAdmin)
	admins := auth.RequireStaffRole(domain.RoleSuperAdmin, domain.RoleAdmin)
	managers := auth.RequireStaffRole(domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleManager)

	companies := staff("/companies")
	companies.Get("/", cfg.Tenants.ListCompanies)
	companies.Get("/:id", cfg.Tenants.GetCompany)
	companies.Post("/", seniorOnly, cfg.Tenants.CreateCompany)
	companies.Put("/:id", seniorOnly, cfg.Tenants.UpdateCompany)
	companies.Patch("/:id/toggle-status", seniorOnly, cfg.Tenants.ToggleCompany)

	branches := staff("/branches")
	branches.Get("/", cfg.Tenants.ListBranches)
	branches.Get("/:id", cfg.Tenants.GetBranch)
	branches.Post("/", seniorOnly, cfg.Tenants.CreateBranch)
	branches.Put("/:id", managers, cfg.Tenants.UpdateBranch)
	branches.Patch("/:id/toggle-status", seniorOnly, cfg.Tenants.ToggleBranch)

	subscriptions := staff("/subscriptions")
	subscriptions.Get("/", cfg.Subscriptions.List)
	subscriptions.Get("/stats", cfg.Subscriptions.Stats)
	subscriptions.Get("/active/:companyId", cfg.Subscriptions.Active)
	subscriptions.Get("/:id", cfg.Subscriptions.Get)
	subscriptions.Post("/", seniorOnly, cfg.Subscriptions.Create)
	subscriptions.Patch("/:id", seniorOnly, cfg.Subscriptions.Update)
	subscriptions.Patch("/:id/toggle-status", seniorOnly, cfg.Subscriptions.ToggleStatus)
	subscriptions.Delete("/:id", seniorOnly, cfg.Subscriptions.Delete)

	employees := staff("/employees")
	employees.Get("/", cfg.Employees.List)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", admins, cfg.Employees.Create)
	employees.Put("/:id", managers, cfg.Employees.Update)
	employees.Patch("/:id/toggle-status", admins, cfg.Employees.ToggleStatus)
	employees.Delete("/:id", admins, cfg.Employees.Delete)

	customers := staff("/customers")
	customers.Get("/", cfg.Customers.List)
	customers.Post("/", cfg.Customers.Create)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", cfg.Customers.Update)
	customers.Patch("/:id/toggle-status", cfg.Customers.ToggleStatus)
	customers.Delete("/:id", cfg.Customers.Delete)
	customers.Post("/:id/qr-code", cfg.Customers.GenerateQRCode)
	customers.Get("/:id/medical-history", cfg.Customers.MedicalHistory)

	services := staff("/services")
	services.Get("/", cfg.Catalog.List)
	services.Post("/", cfg.Catalog.Create)
	services.Get("/:id", cfg.Catalog.Get)
	services.Put("/:id", cfg.Catalog.Update)
	services.Patch("/:id/toggle-status", cfg.Catalog.ToggleStatus)
	services.Delete("/:id", cfg.Catalog.Delete)

	products := staff("/products")
	products.Get("/", cfg.Products.List)
	products.Post("/", managers, cfg.Products.Create)
	products.Get("/:id", cfg.Products.Get)
	products.Put("/:id", cfg.Products.Update)
	products.Patch("/:id/toggle-status", cfg.Products.ToggleStatus)
	products.Delete("/:id", cfg.Products.Delete)
	products.Post("/:id/use-service", cfg.Products.UseService)
	products.Get("/:id/remaining", cfg.Products.Remaining)
	products.Get("/:id/usages", cfg.Products.Usages)

	orders := staff("/orders")
	orders.Get("/", cfg.Orders.List)
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Put("/:id", cfg.Orders.Update)
	orders.Patch("/:id/status", cfg.Orders.UpdateStatus)
	orders.Delete("/:id", cfg.Orders.Delete)
	orders.Post("/:id/use-service", cfg.Orders.UseService)

	audit := staff("/audit")
	audit.Get("/", cfg.Audit.List)
	audit.Get("/stats", cfg.Audit.Stats)
}
