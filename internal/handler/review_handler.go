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

// ReviewHandler wires the review request endpoints.
type ReviewHandler struct {
	coordinator *game.Coordinator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(coordinator *game.Coordinator, validator *validator.Validate, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		coordinator: coordinator,
		validator:   validator,
		logger:      logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register attaches review endpoints to the router group.
func (h *ReviewHandler) Register(router fiber.Router) {
	instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id/status", instructor, h.updateStatus)
	router.Delete("/:id", instructor, h.delete)
}

// list is role-aware: instructors see every review request, students see the
// ones filed on behalf of their own team.
func (h *ReviewHandler) list(c *fiber.Ctx) error {
	principal := principalFrom(c)
	if principal.IsInstructor() {
		return utils.SendSuccess(c, "review requests retrieved", dto.NewReviewResponseSlice(h.coordinator.ReviewRequests()))
	}

	teamID := ""
	for _, team := range h.coordinator.Teams() {
		if team.HasMember(principal.ID) {
			teamID = team.ID
			break
		}
	}

	reviews := []models.ReviewRequest{}
	if teamID != "" {
		reviews = h.coordinator.ReviewRequestsForTeam(teamID)
	}

	return utils.SendSuccess(c, "review requests retrieved", dto.NewReviewResponseSlice(reviews))
}

func (h *ReviewHandler) create(c *fiber.Ctx) error {
	var payload dto.ReviewCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	input := game.ReviewRequestInput{
		Title:         payload.Title,
		Description:   payload.Description,
		Reason:        payload.Reason,
		Priority:      payload.Priority,
		TargetTeamID:  payload.TargetTeamID,
		TargetProvaID: payload.TargetProvaID,
	}
	for _, item := range payload.Evidence {
		input.Evidence = append(input.Evidence, game.EvidenceInput{
			Type:        item.Type,
			URL:         item.URL,
			Description: item.Description,
		})
	}

	review, err := h.coordinator.CreateReviewRequest(c.Context(), principalFrom(c), input)
	recordCommand("create_review_request", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "review request filed", dto.NewReviewResponse(review))
}

func (h *ReviewHandler) updateStatus(c *fiber.Ctx) error {
	var payload dto.ReviewStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.UpdateReviewStatus(c.Context(), principalFrom(c), c.Params("id"), payload.Status, payload.Resolution)
	recordCommand("update_review_status", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review status updated", nil)
}

func (h *ReviewHandler) delete(c *fiber.Ctx) error {
	err := h.coordinator.DeleteReviewRequest(c.Context(), principalFrom(c), c.Params("id"))
	recordCommand("delete_review_request", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "review request deleted", nil)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, game.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, game.ErrInstructorOnly):
		return utils.SendError(c, fiber.StatusForbidden, "instructor role required")
	case errors.Is(err, game.ErrReviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "review request not found")
	case errors.Is(err, game.ErrNoTeamMembership):
		return utils.SendError(c, fiber.StatusConflict, "join a team before filing a review request")
	case errors.Is(err, game.ErrReviewClosed):
		return utils.SendError(c, fiber.StatusConflict, "review request already closed")
	case errors.Is(err, game.ErrInvalidReviewStatus), errors.Is(err, game.ErrInvalidPriority):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrInvalidReviewTransition):
		return utils.SendError(c, fiber.StatusConflict, "invalid review status transition")
	default:
		h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("review request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
