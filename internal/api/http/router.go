package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thomlank/QuikTik/internal/api/http/handlers"
	"github.com/thomlank/QuikTik/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Teams          *handlers.TeamsHandler
	Tickets        *handlers.TicketsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := api.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", auth.RequireAdmin(), cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Deactivate)

	teams := api.Group("/teams")
	teams.Get("/", cfg.Teams.List)
	teams.Post("/", auth.RequireAdmin(), cfg.Teams.Create)
	teams.Get("/:id", cfg.Teams.Get)
	teams.Patch("/:id", auth.RequireAdmin(), cfg.Teams.Update)
	teams.Delete("/:id", auth.RequireAdmin(), cfg.Teams.Delete)
	teams.Get("/:id/members", cfg.Teams.ListMembers)
	teams.Post("/:id/members", cfg.Teams.AddMember)

	memberships := api.Group("/memberships")
	memberships.Patch("/:id", cfg.Teams.SetMemberRole)
	memberships.Delete("/:id", cfg.Teams.RemoveMember)

	tickets := api.Group("/tickets")
	tickets.Get("/assignable-users", cfg.Tickets.AssignableUsers)
	tickets.Get("/assignable-teams", cfg.Tickets.AssignableTeams)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	comments := api.Group("/comments")
	comments.Patch("/:id", cfg.Tickets.UpdateComment)
	comments.Delete("/:id", cfg.Tickets.DeleteComment)

	categories := api.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Post("/", auth.RequireAdmin(), cfg.Categories.Create)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Patch("/:id", auth.RequireAdmin(), cfg.Categories.Update)
	categories.Delete("/:id", auth.RequireAdmin(), cfg.Categories.Delete)
}
