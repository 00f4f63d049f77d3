package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/service"
	"github.com/moses-maker/educore-api/internal/utils"
)

// AuditHandler exposes the read side of the audit trail.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler builds an audit handler instance.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register attaches the audit routes to the provided router group.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/target", h.resolveTarget)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	var req dto.AuditLogListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	entries, err := h.service.List(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "audit logs retrieved", entries)
}

func (h *AuditHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "audit log retrieved", entry)
}

// resolveTarget follows the (target_type, target_id) reference of an entry to
// the current state of the affected record.
func (h *AuditHandler) resolveTarget(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	if entry.TargetType == "" || entry.TargetID == nil {
		return utils.SendError(c, fiber.StatusNotFound, "audit entry has no target reference")
	}

	target, err := h.service.ResolveTarget(c.UserContext(), entry.TargetType, *entry.TargetID)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "target resolved", target)
}
