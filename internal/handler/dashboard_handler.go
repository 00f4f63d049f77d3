package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/service"
	"github.com/moses-maker/educore-api/internal/utils"
)

// DashboardHandler serves the student dashboard endpoint.
type DashboardHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler builds a dashboard handler instance.
func NewDashboardHandler(service service.StudentDashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard routes to the provided router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("/student", h.student)
}

func (h *DashboardHandler) student(c *fiber.Ctx) error {
	dashboard, err := h.service.GetDashboard(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
