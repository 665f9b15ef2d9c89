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

// ProvaHandler wires the challenge endpoints.
type ProvaHandler struct {
	coordinator *game.Coordinator
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProvaHandler constructs the handler.
func NewProvaHandler(coordinator *game.Coordinator, validator *validator.Validate, logger zerolog.Logger) *ProvaHandler {
	return &ProvaHandler{
		coordinator: coordinator,
		validator:   validator,
		logger:      logger.With().Str("component", "prova_handler").Logger(),
	}
}

// Register attaches prova endpoints to the router group.
func (h *ProvaHandler) Register(router fiber.Router) {
	instructor := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin)

	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", instructor, h.create)
	router.Put("/:id", instructor, h.update)
	router.Patch("/:id/status", instructor, h.toggleStatus)
	router.Delete("/:id", instructor, h.delete)
	router.Get("/:id/stats", instructor, h.stats)
	router.Post("/:id/submissions", h.submit)
	router.Put("/:id/submissions/:submissionId/evaluation", instructor, h.evaluate)
}

// list is role-aware: instructors see every prova with all submissions,
// students see active provas with only their own submission and no grade
// data until it is made visible.
func (h *ProvaHandler) list(c *fiber.Ctx) error {
	principal := principalFrom(c)
	if principal.IsInstructor() {
		return utils.SendSuccess(c, "provas retrieved", dto.NewProvaResponseSlice(h.coordinator.Provas()))
	}

	provas := h.coordinator.ActiveProvas()
	return utils.SendSuccess(c, "provas retrieved", dto.NewStudentProvaResponseSlice(provas, principal.ID))
}

func (h *ProvaHandler) get(c *fiber.Ctx) error {
	prova, ok := h.coordinator.ProvaByID(c.Params("id"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "prova not found")
	}

	principal := principalFrom(c)
	if principal.IsInstructor() {
		return utils.SendSuccess(c, "prova retrieved", dto.NewProvaResponse(prova))
	}
	if !prova.IsActive {
		return utils.SendError(c, fiber.StatusNotFound, "prova not found")
	}

	return utils.SendSuccess(c, "prova retrieved", dto.NewStudentProvaResponse(prova, principal.ID))
}

func (h *ProvaHandler) create(c *fiber.Ctx) error {
	var payload dto.ProvaCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	prova, err := h.coordinator.CreateProva(c.Context(), principalFrom(c), payload.Title, payload.Description, payload.Instructions, payload.MaxPoints)
	recordCommand("create_prova", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "prova created", dto.NewProvaResponse(prova))
}

func (h *ProvaHandler) update(c *fiber.Ctx) error {
	var payload dto.ProvaUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.UpdateProva(c.Context(), principalFrom(c), c.Params("id"), payload.Title, payload.Description, payload.Instructions, payload.MaxPoints)
	recordCommand("update_prova", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prova updated", nil)
}

func (h *ProvaHandler) toggleStatus(c *fiber.Ctx) error {
	var payload dto.ProvaToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	err := h.coordinator.ToggleProvaStatus(c.Context(), principalFrom(c), c.Params("id"), *payload.IsActive)
	recordCommand("toggle_prova_status", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prova status updated", nil)
}

func (h *ProvaHandler) delete(c *fiber.Ctx) error {
	err := h.coordinator.DeleteProva(c.Context(), principalFrom(c), c.Params("id"))
	recordCommand("delete_prova", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "prova deleted", nil)
}

func (h *ProvaHandler) stats(c *fiber.Ctx) error {
	stats, ok := h.coordinator.SubmissionStatsFor(c.Params("id"))
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "prova not found")
	}

	return utils.SendSuccess(c, "submission stats retrieved", stats)
}

func (h *ProvaHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmitProvaRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.coordinator.SubmitProva(c.Context(), principalFrom(c), c.Params("id"), payload.Content)
	recordCommand("submit_prova", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendCreated(c, "submission recorded", dto.NewSubmissionResponse(submission))
}

func (h *ProvaHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluateSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.coordinator.EvaluateSubmission(
		c.Context(),
		principalFrom(c),
		c.Params("id"),
		c.Params("submissionId"),
		*payload.Points,
		payload.Feedback,
		payload.IsGradeVisible,
	)
	recordCommand("evaluate_submission", err)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission evaluated", dto.NewSubmissionResponse(submission))
}

func (h *ProvaHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, game.ErrNotAuthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, game.ErrInstructorOnly):
		return utils.SendError(c, fiber.StatusForbidden, "instructor role required")
	case errors.Is(err, game.ErrProvaNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "prova not found")
	case errors.Is(err, game.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, game.ErrProvaInactive):
		return utils.SendError(c, fiber.StatusConflict, "prova is not active")
	case errors.Is(err, game.ErrAlreadySubmitted):
		return utils.SendError(c, fiber.StatusConflict, "prova already submitted")
	case errors.Is(err, game.ErrNoTeamMembership):
		return utils.SendError(c, fiber.StatusConflict, "join a team before submitting")
	case errors.Is(err, game.ErrInvalidMaxPoints):
		return utils.SendError(c, fiber.StatusBadRequest, "max points must be a positive integer")
	case errors.Is(err, game.ErrEmptyContent):
		return utils.SendError(c, fiber.StatusBadRequest, "submission content must not be empty")
	case errors.Is(err, game.ErrPointsOutOfRange):
		return utils.SendError(c, fiber.StatusBadRequest, "points outside the allowed range")
	default:
		h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("prova request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
