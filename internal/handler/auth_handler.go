package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/gincana-dev/gincana-go-api/internal/auth"
	"github.com/gincana-dev/gincana-go-api/internal/dto"
	"github.com/gincana-dev/gincana-go-api/internal/middleware"
	"github.com/gincana-dev/gincana-go-api/internal/utils"
)

// AuthHandler wires the account endpoints.
type AuthHandler struct {
	service   *auth.Service
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service *auth.Service, validator *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic binds the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/signup", h.signUp)
	router.Post("/signin", h.signIn)
}

// RegisterProtected binds the auth routes that require a valid token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/signout", h.signOut)
	router.Get("/me", h.me)
	router.Patch("/me", h.updateMe)
}

func (h *AuthHandler) signUp(c *fiber.Ctx) error {
	var payload dto.SignUpRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.SignUp(c.Context(), payload)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return utils.SendError(c, fiber.StatusConflict, "email already registered")
		}
		return h.internalError(c, err)
	}

	return utils.SendCreated(c, "account created", response)
}

func (h *AuthHandler) signIn(c *fiber.Ctx) error {
	var payload dto.SignInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.SignIn(c.Context(), payload)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid email or password")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "signed in", response)
}

// signOut is stateless: tokens are bearer-only and expire on their own, the
// client discards its copy.
func (h *AuthHandler) signOut(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	profile, err := h.service.Profile(c.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *AuthHandler) updateMe(c *fiber.Ctx) error {
	var payload dto.ProfileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := h.service.UpdateProfile(c.Context(), middleware.UserID(c), payload)
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "profile not found")
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *AuthHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Str("correlation_id", middleware.GetCorrelationID(c)).Msg("auth request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
