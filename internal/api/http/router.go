package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Fluffaro/desk-cartel/internal/api/http/handlers"
	"github.com/Fluffaro/desk-cartel/internal/auth"
	"github.com/Fluffaro/desk-cartel/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Agents         *handlers.AgentsHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/start", auth.RequireAgent(), cfg.Tickets.StartTicket)
	tickets.Post("/:id/complete", auth.RequireAgent(), cfg.Tickets.CompleteTicket)

	agents := app.Group("/agents", cfg.AuthMiddleware.Handle)
	agents.Get("/", auth.RequireRole(domain.UserRoleAdmin), cfg.Agents.ListAgents)
	agents.Post("/", auth.RequireRole(domain.UserRoleAdmin), cfg.Agents.PromoteAgent)
	agents.Get("/:id", auth.RequireAnyRole(), cfg.Agents.GetAgent)
	agents.Patch("/:id/active", auth.RequireRole(domain.UserRoleAdmin), cfg.Agents.SetAgentActive)
	agents.Patch("/:id/level", auth.RequireRole(domain.UserRoleAdmin), cfg.Agents.ChangeAgentLevel)

	priorities := app.Group("/priorities", cfg.AuthMiddleware.Handle)
	priorities.Get("/", auth.RequireAnyRole(), cfg.Catalog.ListPriorities)
	priorities.Post("/", auth.RequireRole(domain.UserRoleAdmin), cfg.Catalog.CreatePriority)

	categories := app.Group("/categories", cfg.AuthMiddleware.Handle)
	categories.Get("/", auth.RequireAnyRole(), cfg.Catalog.ListCategories)
	categories.Post("/", auth.RequireRole(domain.UserRoleAdmin), cfg.Catalog.CreateCategory)
	categories.Patch("/:id/active", auth.RequireRole(domain.UserRoleAdmin), cfg.Catalog.SetCategoryActive)
}
