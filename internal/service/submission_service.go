package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/events"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uint
	Role models.UserRole
}

// CanGrade reports whether the actor may set grading fields.
func (a Actor) CanGrade() bool {
	return a.Role == models.RoleLecturer || a.Role == models.RoleAdmin
}

// IsStudent reports whether the actor holds the student role.
func (a Actor) IsStudent() bool {
	return a.Role == models.RoleStudent
}

// SubmissionService governs the submission lifecycle: draft, submitted,
// graded. Every transition checks the actor and the current state before any
// write; derived fields are recomputed on read and never persisted.
type SubmissionService interface {
	List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	EditContent(ctx context.Context, actor Actor, id uint, payload dto.SubmissionEditRequest) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	Grade(ctx context.Context, actor Actor, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	audit       AuditRecorder
	publisher   events.Publisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	enrollmentRepo repository.EnrollmentRepository,
	validate *validator.Validate,
	audit AuditRecorder,
	publisher events.Publisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		enrollments: enrollmentRepo,
		validator:   validate,
		audit:       audit,
		publisher:   publisher,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, actor Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
	}
	if filter.Status != nil {
		status := models.SubmissionStatus(*filter.Status)
		repoFilter.Status = &status
	}

	// Students only ever see their own submissions.
	if actor.IsStudent() {
		repoFilter.StudentID = &actor.ID
	} else {
		repoFilter.StudentID = filter.StudentID
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if actor.IsStudent() && submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, ErrForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Create opens a draft for the acting student. The assignment's availability
// window is deliberately not checked here: is_available is a read-only
// signal, and submissions outside the window remain permitted.
func (s *submissionService) Create(ctx context.Context, actor Actor, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, fmt.Errorf("assignment %d: %w", payload.AssignmentID, ErrNotFound)
		}
		return dto.SubmissionResponse{}, err
	}

	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, actor.ID, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrNotEnrolled
		}
		return dto.SubmissionResponse{}, err
	}
	if !enrollment.IsActive() {
		return dto.SubmissionResponse{}, ErrNotEnrolled
	}

	submission := models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Content:      sanitizeText(payload.Content),
		Status:       models.SubmissionStatusDraft,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		// The composite unique index closes the race between two concurrent
		// creates for the same pair; the loser surfaces a conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmissionResponse{}, fmt.Errorf("submission already exists for assignment %d: %w", assignment.ID, ErrConflict)
		}
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", created.ID).Uint("assignment_id", assignment.ID).Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

// EditContent replaces the content of a draft or submitted submission. Only
// the owning student may edit; graded work is immutable.
func (s *submissionService) EditContent(ctx context.Context, actor Actor, id uint, payload dto.SubmissionEditRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, fmt.Errorf("only the owning student may edit content: %w", ErrForbidden)
	}

	if submission.Status != models.SubmissionStatusDraft && submission.Status != models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, fmt.Errorf("cannot edit %s submission: %w", submission.Status, ErrInvalidState)
	}

	submission.Content = sanitizeText(payload.Content)
	if err := s.submissions.Transition(ctx, &submission, models.SubmissionStatusDraft, models.SubmissionStatusSubmitted); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, fmt.Errorf("submission changed state concurrently: %w", ErrInvalidState)
		}
		return dto.SubmissionResponse{}, err
	}

	return s.reload(ctx, submission.ID)
}

// Submit transitions draft to submitted and stamps submitted_at exactly
// once. Re-submitting submitted or graded work is an invalid transition.
func (s *submissionService) Submit(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if submission.StudentID != actor.ID {
		return dto.SubmissionResponse{}, fmt.Errorf("only the owning student may submit: %w", ErrForbidden)
	}

	if submission.Status != models.SubmissionStatusDraft {
		return dto.SubmissionResponse{}, fmt.Errorf("cannot submit %s submission: %w", submission.Status, ErrInvalidState)
	}

	submittedAt := s.now()
	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &submittedAt

	if err := s.submissions.Transition(ctx, &submission, models.SubmissionStatusDraft); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, fmt.Errorf("submission changed state concurrently: %w", ErrInvalidState)
		}
		return dto.SubmissionResponse{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			UserID:      &actor.ID,
			Action:      models.AuditActionSubmission,
			Description: fmt.Sprintf("submission %d handed in for assignment %d", submission.ID, submission.AssignmentID),
			TargetType:  "submission",
			TargetID:    &submission.ID,
			Success:     true,
			ExtraData:   map[string]interface{}{"assignment_id": submission.AssignmentID},
		})
	}

	if s.publisher != nil {
		s.publisher.Publish(events.SubjectSubmissionSubmitted, events.SubmissionEvent{
			SubmissionID: submission.ID,
			AssignmentID: submission.AssignmentID,
			StudentID:    submission.StudentID,
			ActorID:      actor.ID,
			OccurredAt:   submittedAt,
		})
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission handed in")

	return s.reload(ctx, submission.ID)
}

// Grade sets the grading fields and transitions the submission to graded.
// Draft work may be graded directly. Scores above the assignment maximum are
// accepted as out-of-range bonus values; negatives are rejected by
// validation. Repeating an identical grade by the same grader is a no-op.
func (s *submissionService) Grade(ctx context.Context, actor Actor, id uint, payload dto.SubmissionGradeRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/moses-maker/educore-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.grade")
	span.SetAttributes(
		attribute.Int64("submission.id", int64(id)),
		attribute.Int64("actor.id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	if !actor.CanGrade() {
		err := fmt.Errorf("grading requires lecturer or admin role: %w", ErrForbidden)
		span.SetStatus(codes.Error, "forbidden")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_lookup_failed")
		return dto.SubmissionResponse{}, err
	}

	feedback := sanitizeText(payload.Feedback)

	if submission.IsGraded() && submission.PointsEarned != nil &&
		math.Abs(*submission.PointsEarned-payload.PointsEarned) < 1e-9 &&
		submission.Feedback == feedback &&
		submission.GradedByID != nil && *submission.GradedByID == actor.ID {
		span.SetAttributes(attribute.Bool("grading.idempotent", true))
		return dto.NewSubmissionResponse(submission), nil
	}

	points := payload.PointsEarned
	gradedAt := s.now()
	gradedBy := actor.ID
	submission.Status = models.SubmissionStatusGraded
	submission.PointsEarned = &points
	submission.Feedback = feedback
	submission.GradedAt = &gradedAt
	submission.GradedByID = &gradedBy

	// Any current state may be (re)graded; the guard only protects against
	// torn writes from concurrent graders racing on a stale read.
	err = s.submissions.Transition(ctx, &submission,
		models.SubmissionStatusDraft, models.SubmissionStatusSubmitted, models.SubmissionStatusGraded)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission_update_failed")
		return dto.SubmissionResponse{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			UserID:      &actor.ID,
			Action:      models.AuditActionGradeSubmitted,
			Description: fmt.Sprintf("submission %d graded with %.2f points", submission.ID, points),
			TargetType:  "submission",
			TargetID:    &submission.ID,
			Success:     true,
			ExtraData: map[string]interface{}{
				"assignment_id": submission.AssignmentID,
				"student_id":    submission.StudentID,
				"points_earned": points,
			},
		})
	}

	if s.publisher != nil {
		s.publisher.Publish(events.SubjectSubmissionGraded, events.SubmissionEvent{
			SubmissionID: submission.ID,
			AssignmentID: submission.AssignmentID,
			StudentID:    submission.StudentID,
			ActorID:      actor.ID,
			PointsEarned: &points,
			OccurredAt:   gradedAt,
		})
	}

	span.SetAttributes(attribute.Float64("grading.points", points))
	s.logger.Info().Uint("submission_id", submission.ID).Float64("points", points).Msg("submission graded")

	return s.reload(ctx, submission.ID)
}

func (s *submissionService) getSubmission(ctx context.Context, id uint) (models.Submission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, fmt.Errorf("submission %d: %w", id, ErrNotFound)
		}
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) reload(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	updated, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated), nil
}
