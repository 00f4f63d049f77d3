package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// AssignmentService manages assignment definitions.
type AssignmentService interface {
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, courseID *uint, assignmentType *string) ([]dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(assignments repository.AssignmentRepository, courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		courses:     courses,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("assignment %d: %w", id, ErrNotFound)
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) List(ctx context.Context, courseID *uint, assignmentType *string) ([]dto.AssignmentResponse, error) {
	filter := repository.AssignmentFilter{CourseID: courseID}
	if assignmentType != nil && *assignmentType != "" {
		at := models.AssignmentType(*assignmentType)
		filter.Type = &at
	}

	assignments, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

// Create persists a new assignment after checking the points invariant:
// passing points may never exceed max points.
func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.CanGrade() {
		return dto.AssignmentResponse{}, fmt.Errorf("assignment creation requires lecturer or admin role: %w", ErrForbidden)
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.PassingPoints > payload.MaxPoints {
		return dto.AssignmentResponse{}, fmt.Errorf("passing_points (%.2f) exceeds max_points (%.2f): %w", payload.PassingPoints, payload.MaxPoints, ErrValidation)
	}

	course, err := s.courses.GetByID(ctx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("course %d: %w", payload.CourseID, ErrNotFound)
		}
		return dto.AssignmentResponse{}, err
	}

	if actor.Role != models.RoleAdmin && course.LecturerID != actor.ID {
		return dto.AssignmentResponse{}, fmt.Errorf("only the course lecturer may add assignments: %w", ErrForbidden)
	}

	assignment := models.Assignment{
		CourseID:            course.ID,
		Title:               strings.TrimSpace(payload.Title),
		Description:         sanitizeText(payload.Description),
		AssignmentType:      models.AssignmentType(payload.AssignmentType),
		MaxPoints:           payload.MaxPoints,
		PassingPoints:       payload.PassingPoints,
		DueDate:             payload.DueDate,
		AvailableFrom:       payload.AvailableFrom,
		AvailableUntil:      payload.AvailableUntil,
		AllowLateSubmission: payload.AllowLateSubmission,
		LatePenaltyPerDay:   payload.LatePenaltyPerDay,
		CreatedByID:         actor.ID,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("course_id", course.ID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("assignment %d: %w", id, ErrNotFound)
		}
		return dto.AssignmentResponse{}, err
	}

	if actor.Role != models.RoleAdmin && assignment.CreatedByID != actor.ID {
		return dto.AssignmentResponse{}, fmt.Errorf("only the creating lecturer may update: %w", ErrForbidden)
	}

	if payload.Title != nil {
		assignment.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		assignment.Description = sanitizeText(*payload.Description)
	}
	if payload.AssignmentType != nil {
		assignment.AssignmentType = models.AssignmentType(*payload.AssignmentType)
	}
	if payload.MaxPoints != nil {
		assignment.MaxPoints = *payload.MaxPoints
	}
	if payload.PassingPoints != nil {
		assignment.PassingPoints = *payload.PassingPoints
	}
	if payload.DueDate != nil {
		assignment.DueDate = *payload.DueDate
	}
	if payload.AvailableFrom != nil {
		assignment.AvailableFrom = payload.AvailableFrom
	}
	if payload.AvailableUntil != nil {
		assignment.AvailableUntil = payload.AvailableUntil
	}
	if payload.AllowLateSubmission != nil {
		assignment.AllowLateSubmission = *payload.AllowLateSubmission
	}
	if payload.LatePenaltyPerDay != nil {
		assignment.LatePenaltyPerDay = *payload.LatePenaltyPerDay
	}

	// Re-check the invariant against the merged state.
	if assignment.PassingPoints > assignment.MaxPoints {
		return dto.AssignmentResponse{}, fmt.Errorf("passing_points (%.2f) exceeds max_points (%.2f): %w", assignment.PassingPoints, assignment.MaxPoints, ErrValidation)
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment %d: %w", id, ErrNotFound)
		}
		return err
	}

	if actor.Role != models.RoleAdmin && assignment.CreatedByID != actor.ID {
		return fmt.Errorf("only the creating lecturer may delete: %w", ErrForbidden)
	}

	return s.assignments.Delete(ctx, id)
}
