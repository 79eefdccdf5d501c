package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bug-tracker/internal/api/http/handlers"
	"github.com/spec-kit/bug-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Bugs           *handlers.BugsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	// ProtectBugMutations puts the bearer middleware in front of POST, PUT and DELETE on bugs.
	ProtectBugMutations bool
}

// RegisterRoutes wires HTTP routes under /api and the catch-all 404.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Get("/metrics", cfg.Health.Metrics)

	bugs := api.Group("/bugs")
	var mutate []fiber.Handler
	if cfg.ProtectBugMutations {
		mutate = append(mutate, cfg.AuthMiddleware.Handle)
	}
	bugs.Get("/", cfg.Bugs.ListBugs)
	bugs.Post("/", append(mutate, cfg.Bugs.CreateBug)...)
	bugs.Get("/:id", cfg.Bugs.GetBug)
	bugs.Put("/:id", append(mutate, cfg.Bugs.UpdateBug)...)
	bugs.Delete("/:id", append(mutate, cfg.Bugs.DeleteBug)...)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Not found"})
	})
}
