package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gincana-dev/gincana-go-api/internal/game"
	"github.com/gincana-dev/gincana-go-api/internal/middleware"
	"github.com/gincana-dev/gincana-go-api/internal/observability"
)

// principalFrom builds the command principal from the authenticated request.
func principalFrom(c *fiber.Ctx) game.Principal {
	return game.Principal{
		ID:   middleware.UserID(c),
		Role: middleware.UserRole(c),
	}
}

// recordCommand counts a coordinator command invocation by outcome.
func recordCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.CommandsTotal().WithLabelValues(command, outcome).Inc()
}
