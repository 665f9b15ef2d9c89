package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gincana-dev/gincana-go-api/internal/middleware"
	"github.com/gincana-dev/gincana-go-api/internal/upload"
	"github.com/gincana-dev/gincana-go-api/internal/utils"
)

// UploadHandler wires the evidence upload endpoint.
type UploadHandler struct {
	service *upload.Service
	logger  zerolog.Logger
}

// NewUploadHandler constructs the handler.
func NewUploadHandler(service *upload.Service, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register attaches the upload endpoint to the router group.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("/evidence", h.uploadEvidence)
}

func (h *UploadHandler) uploadEvidence(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	response, err := h.service.StoreEvidence(c.Context(), file)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrFileRequired):
			return utils.SendError(c, fiber.StatusBadRequest, "file is required")
		case errors.Is(err, upload.ErrFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
		case errors.Is(err, upload.ErrTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, "file type not allowed")
		default:
			h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("evidence upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendCreated(c, "evidence uploaded", response)
}
