package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/events"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// EnrollmentService manages course membership.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error)
	Drop(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error)
	ListForCourse(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error)
	IsActivelyEnrolled(ctx context.Context, studentID, courseID uint) (bool, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	audit       AuditRecorder
	publisher   events.Publisher
	logger      zerolog.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, audit AuditRecorder, publisher events.Publisher, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		audit:       audit,
		publisher:   publisher,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
	}
}

// Enroll joins the acting student to a course, respecting its capacity. A
// previously dropped enrollment is reactivated instead of duplicated.
func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, fmt.Errorf("course %d: %w", courseID, ErrNotFound)
		}
		return dto.EnrollmentResponse{}, err
	}

	active, err := s.enrollments.CountActive(ctx, courseID)
	if err != nil {
		return dto.EnrollmentResponse{}, err
	}
	if course.MaxStudents > 0 && active >= int64(course.MaxStudents) {
		return dto.EnrollmentResponse{}, ErrCourseFull
	}

	existing, err := s.enrollments.GetByStudentAndCourse(ctx, actor.ID, courseID)
	switch {
	case err == nil:
		if existing.IsActive() {
			return dto.EnrollmentResponse{}, fmt.Errorf("already enrolled: %w", ErrConflict)
		}
		existing.Status = models.EnrollmentStatusActive
		if err := s.enrollments.Update(ctx, &existing); err != nil {
			return dto.EnrollmentResponse{}, err
		}
		s.recordEnrollment(ctx, actor, existing, "enrollment reactivated")
		return dto.NewEnrollmentResponse(existing), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to create
	default:
		return dto.EnrollmentResponse{}, err
	}

	enrollment := models.Enrollment{
		StudentID: actor.ID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusActive,
	}

	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.EnrollmentResponse{}, fmt.Errorf("already enrolled: %w", ErrConflict)
		}
		return dto.EnrollmentResponse{}, err
	}

	s.recordEnrollment(ctx, actor, enrollment, "student enrolled")

	if s.publisher != nil {
		s.publisher.Publish(events.SubjectEnrollmentCreated, events.EnrollmentEvent{
			EnrollmentID: enrollment.ID,
			StudentID:    enrollment.StudentID,
			CourseID:     enrollment.CourseID,
			OccurredAt:   enrollment.EnrolledAt,
		})
	}

	return dto.NewEnrollmentResponse(enrollment), nil
}

// Drop marks the acting student's enrollment as dropped.
func (s *enrollmentService) Drop(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error) {
	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, actor.ID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, fmt.Errorf("enrollment: %w", ErrNotFound)
		}
		return dto.EnrollmentResponse{}, err
	}

	if !enrollment.IsActive() {
		return dto.EnrollmentResponse{}, fmt.Errorf("enrollment is not active: %w", ErrInvalidState)
	}

	enrollment.Status = models.EnrollmentStatusDropped
	if err := s.enrollments.Update(ctx, &enrollment); err != nil {
		return dto.EnrollmentResponse{}, err
	}

	s.recordEnrollment(ctx, actor, enrollment, "student dropped course")

	return dto.NewEnrollmentResponse(enrollment), nil
}

func (s *enrollmentService) ListForStudent(ctx context.Context, studentID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

func (s *enrollmentService) ListForCourse(ctx context.Context, courseID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.List(ctx, repository.EnrollmentFilter{CourseID: &courseID})
	if err != nil {
		return nil, err
	}
	return dto.NewEnrollmentResponseSlice(enrollments), nil
}

// IsActivelyEnrolled answers the membership question consumed by the
// submission workflow.
func (s *enrollmentService) IsActivelyEnrolled(ctx context.Context, studentID, courseID uint) (bool, error) {
	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return enrollment.IsActive(), nil
}

func (s *enrollmentService) recordEnrollment(ctx context.Context, actor Actor, enrollment models.Enrollment, description string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:      &actor.ID,
		Action:      models.AuditActionEnrollment,
		Description: description,
		TargetType:  "enrollment",
		TargetID:    &enrollment.ID,
		Success:     true,
		ExtraData: map[string]interface{}{
			"course_id": enrollment.CourseID,
			"status":    string(enrollment.Status),
		},
	})
}
