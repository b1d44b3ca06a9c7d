package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-service/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-service/internal/auth"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Listings       *handlers.ListingsHandler
	Purchases      *handlers.PurchasesHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/developer/activate", cfg.Auth.ActivateDeveloper)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Post("/logout", cfg.Auth.Logout)
	authProtected.Post("/role/switch", cfg.Auth.SwitchRole)

	listings := app.Group("/listings")
	listings.Get("/", cfg.Listings.List)
	listings.Get("/:id", cfg.Listings.Get)
	listings.Post("/", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleSeller, domain.RoleDeveloper), cfg.Listings.Submit)

	purchases := app.Group("/purchases", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	purchases.Post("/", cfg.Purchases.Create)
	purchases.Get("/", cfg.Purchases.List)
	purchases.Post("/:id/download", cfg.Purchases.Download)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/listings/pending", cfg.Admin.ListPending)
	admin.Post("/listings/:id/approve", cfg.Admin.Approve)
	admin.Post("/listings/:id/reject", cfg.Admin.Reject)
	admin.Post("/users/:id/promote-developer", cfg.Admin.PromoteDeveloper)
}
