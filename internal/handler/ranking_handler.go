package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gincana-dev/gincana-go-api/internal/dto"
	"github.com/gincana-dev/gincana-go-api/internal/game"
	"github.com/gincana-dev/gincana-go-api/internal/middleware"
	"github.com/gincana-dev/gincana-go-api/internal/models"
	"github.com/gincana-dev/gincana-go-api/internal/utils"
)

// RankingHandler wires the ranking endpoints.
type RankingHandler struct {
	coordinator *game.Coordinator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewRankingHandler constructs the handler.
func NewRankingHandler(coordinator *game.Coordinator, validator *validator.Validate, logger zerolog.Logger) *RankingHandler {
	return &RankingHandler{
		coordinator: coordinator,
		validator:   validator,
		logger:      logger.With().Str("component", "ranking_handler").Logger(),
	}
}

// Register attaches ranking endpoints to the router group.
func (h *RankingHandler) Register(router fiber.Router) {
	instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.Get("", h.get)
	router.Put("/visibility", instructor, h.toggleVisibility)
}

// get returns the projected ranking. Instructors always receive the rows;
// students receive them only while the ranking is visible.
func (h *RankingHandler) get(c *fiber.Ctx) error {
	response := dto.RankingResponse{Rows: []dto.RankingRowResponse{}}
	if settings, ok := h.coordinator.RankingSettings(); ok {
		response.IsVisible = settings.IsVisible
		response.LastUpdated = settings.LastUpdated
	}

	principal := principalFrom(c)
	if principal.IsInstructor() || response.IsVisible {
		response.Rows = dto.NewRankingRows(h.coordinator.Ranking())
	}

	return utils.SendSuccess(c, "ranking retrieved", response)
}

func (h *RankingHandler) toggleVisibility(c *fiber.Ctx) error {
	var payload dto.ToggleRankingVisibilityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.ToggleRankingVisibility(c.Context(), principalFrom(c), *payload.IsVisible)
	recordCommand("toggle_ranking_visibility", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "ranking visibility updated", nil)
}

func (h *RankingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, game.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, game.ErrInstructorOnly):
		return utils.SendError(c, fiber.StatusForbidden, "instructor role required")
	default:
		h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("ranking request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
