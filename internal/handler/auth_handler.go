package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/service"
	"github.com/moses-maker/educore-api/internal/utils"
)

// AuthHandler manages registration, login and credential endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler builds an auth handler instance.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublic(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/login", h.login)
}

// RegisterProtected attaches the auth routes that require a valid token.
func (h *AuthHandler) RegisterProtected(router fiber.Router) {
	router.Post("/logout", h.logout)
	router.Post("/change-password", h.changePassword)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "user registered", user)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	token, err := h.service.Login(c.UserContext(), payload, requestMetaFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "login successful", token)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.service.Logout(c.UserContext(), actorFromContext(c), requestMetaFromContext(c))
	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) changePassword(c *fiber.Ctx) error {
	var payload dto.ChangePasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ChangePassword(c.UserContext(), actorFromContext(c), payload); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "password changed", nil)
}
