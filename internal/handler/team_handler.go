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

// TeamHandler wires the team endpoints.
type TeamHandler struct {
	coordinator *game.Coordinator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewTeamHandler constructs the handler.
func NewTeamHandler(coordinator *game.Coordinator, validator *validator.Validate, logger zerolog.Logger) *TeamHandler {
	return &TeamHandler{
		coordinator: coordinator,
		validator:   validator,
		logger:      logger.With().Str("component", "team_handler").Logger(),
	}
}

// Register attaches team endpoints to the router group.
func (h *TeamHandler) Register(router fiber.Router) {
	instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.Get("", h.list)
	router.Post("", instructor, h.create)
	router.Put("/:id", instructor, h.update)
	router.Delete("/:id", instructor, h.delete)
	router.Get("/:id/members", h.members)
	router.Post("/:id/join", h.join)
	router.Post("/transfer", instructor, h.transfer)
}

func (h *TeamHandler) list(c *fiber.Ctx) error {
	teams := h.coordinator.Teams()
	return utils.SendSuccess(c, "teams retrieved", dto.NewTeamResponseSlice(teams))
}

func (h *TeamHandler) create(c *fiber.Ctx) error {
	var payload dto.TeamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	team, err := h.coordinator.CreateTeam(c.Context(), principalFrom(c), payload.Name, payload.Description, payload.Color)
	recordCommand("create_team", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "team created", dto.NewTeamResponse(team))
}

func (h *TeamHandler) update(c *fiber.Ctx) error {
	var payload dto.TeamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.UpdateTeam(c.Context(), principalFrom(c), c.Params("id"), payload.Name, payload.Description, payload.Color)
	recordCommand("update_team", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team updated", nil)
}

func (h *TeamHandler) delete(c *fiber.Ctx) error {
	err := h.coordinator.DeleteTeam(c.Context(), principalFrom(c), c.Params("id"))
	recordCommand("delete_team", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team deleted", nil)
}

func (h *TeamHandler) members(c *fiber.Ctx) error {
	profiles, err := h.coordinator.TeamMembers(c.Context(), c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team members retrieved", dto.NewTeamMemberResponseSlice(profiles))
}

func (h *TeamHandler) join(c *fiber.Ctx) error {
	err := h.coordinator.JoinTeam(c.Context(), principalFrom(c), c.Params("id"))
	recordCommand("join_team", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "team joined", nil)
}

func (h *TeamHandler) transfer(c *fiber.Ctx) error {
	var payload dto.TransferMemberRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.TransferMember(c.Context(), principalFrom(c), payload.MemberID, payload.FromTeamID, payload.ToTeamID)
	recordCommand("transfer_member", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "member transferred", nil)
}

func (h *TeamHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, game.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, game.ErrInstructorOnly):
		return utils.SendError(c, fiber.StatusForbidden, "instructor role required")
	case errors.Is(err, game.ErrTeamNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "team not found")
	default:
		h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("team request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
