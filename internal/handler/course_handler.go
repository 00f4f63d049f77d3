package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/service"
	"github.com/moses-maker/educore-api/internal/utils"
)

// CourseHandler manages course and enrollment endpoints.
type CourseHandler struct {
	courses     service.CourseService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewCourseHandler builds a course handler instance.
func NewCourseHandler(courses service.CourseService, enrollments service.EnrollmentService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches the course routes to the provided router group.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Post("/:id/enroll", h.enroll)
	router.Post("/:id/drop", h.drop)
	router.Get("/:id/enrollments", h.listEnrollments)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	var req dto.CourseListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	courses, err := h.courses.List(c.UserContext(), req)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Update(c.UserContext(), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.courses.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course deleted", nil)
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if actor.Role != models.RoleStudent {
		return utils.SendError(c, fiber.StatusForbidden, "only students may enroll")
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), actor, id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", enrollment)
}

func (h *CourseHandler) drop(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.enrollments.Drop(c.UserContext(), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "dropped", enrollment)
}

// listEnrollments serves the course roster. Students see only their own
// membership through /users/me; the roster is for teaching staff.
func (h *CourseHandler) listEnrollments(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	actor := actorFromContext(c)
	if !actor.CanGrade() {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	enrollments, err := h.enrollments.ListForCourse(c.UserContext(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}
