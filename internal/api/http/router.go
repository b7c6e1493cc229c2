package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/commerce-kit/backoffice-core/internal/api/http/handlers"
	"github.com/commerce-kit/backoffice-core/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Session  *handlers.SessionHandler
	Orders   *handlers.OrdersHandler
	Sessions *service.SessionManager
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	sessionGroup := app.Group("/session")
	sessionGroup.Post("/login", cfg.Session.Login)
	sessionGroup.Post("/logout", cfg.Session.Logout)
	sessionGroup.Get("", cfg.Session.Current)

	orders := app.Group("/orders", RequireSession(cfg.Sessions))
	orders.Get("/:id", cfg.Orders.Get)
	orders.Put("/:id/status", cfg.Orders.UpdateStatus)
	orders.Post("/:id/cancel", cfg.Orders.Cancel)
	orders.Put("/:id/assign", cfg.Orders.Assign)
}
