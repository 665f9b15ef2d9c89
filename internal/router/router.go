package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gincana-dev/gincana-go-api/internal/config"
	"github.com/gincana-dev/gincana-go-api/internal/handler"
	"github.com/gincana-dev/gincana-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	TeamHandler    *handler.TeamHandler
	ProvaHandler   *handler.ProvaHandler
	RankingHandler *handler.RankingHandler
	ReviewHandler  *handler.ReviewHandler
	UploadHandler  *handler.UploadHandler
	StreamHandler  *handler.StreamHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		authGroup := api.Group("/auth")
		deps.AuthHandler.RegisterPublic(authGroup)
		deps.AuthHandler.RegisterProtected(api.Group("/auth", jwtMiddleware))
	}

	if deps.TeamHandler != nil {
		deps.TeamHandler.Register(api.Group("/teams", jwtMiddleware))
	}

	if deps.ProvaHandler != nil {
		deps.ProvaHandler.Register(api.Group("/provas", jwtMiddleware))
	}

	if deps.RankingHandler != nil {
		deps.RankingHandler.Register(api.Group("/ranking", jwtMiddleware))
	}

	if deps.ReviewHandler != nil {
		deps.ReviewHandler.Register(api.Group("/reviews", jwtMiddleware))
	}

	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", jwtMiddleware))
	}

	if deps.StreamHandler != nil {
		deps.StreamHandler.Register(api.Group("", jwtMiddleware))
	}
}
