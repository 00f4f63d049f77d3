package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// StudentDashboardService aggregates a student's standing across their
// active enrollments. Results are cached; cache failures fall through to the
// database.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	enrollments repository.EnrollmentRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(enrollments repository.EnrollmentRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	return &studentDashboardService{
		enrollments: enrollments,
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("dashboard:student:%d", studentID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	status := models.EnrollmentStatusActive
	enrollments, err := s.enrollments.List(ctx, repository.EnrollmentFilter{StudentID: &studentID, Status: &status})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	var assignments []models.Assignment
	for _, enrollment := range enrollments {
		courseAssignments, err := s.assignments.List(ctx, repository.AssignmentFilter{CourseID: &enrollment.CourseID})
		if err != nil {
			return dto.StudentDashboardResponse{}, err
		}
		assignments = append(assignments, courseAssignments...)
	}

	response := s.buildResponse(studentID, len(enrollments), assignments, submissions)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) buildResponse(studentID uint, enrolledCourses int, assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	now := s.now()
	submissionByAssignment := map[uint]models.Submission{}
	for _, submission := range submissions {
		submissionByAssignment[submission.AssignmentID] = submission
	}

	response := dto.StudentDashboardResponse{
		StudentID:        studentID,
		EnrolledCourses:  enrolledCourses,
		TotalAssignments: len(assignments),
	}

	var percentageTotal float64
	var gradedWithScore int

	for _, assignment := range assignments {
		submission, exists := submissionByAssignment[assignment.ID]
		if !exists {
			if assignment.IsOverdue(now) {
				response.OverdueWithoutWork++
			}
			continue
		}

		switch submission.Status {
		case models.SubmissionStatusDraft:
			response.DraftSubmissions++
		case models.SubmissionStatusSubmitted:
			response.PendingGrading++
		case models.SubmissionStatusGraded:
			response.GradedSubmissions++
			if pct := submission.PercentageScore(); pct != nil {
				percentageTotal += *pct
				gradedWithScore++
			}
			if passing := submission.IsPassing(); passing != nil && *passing {
				response.PassingSubmissions++
			}
		}
	}

	if gradedWithScore > 0 {
		average := percentageTotal / float64(gradedWithScore)
		response.AveragePercentage = &average
	}

	return response
}
