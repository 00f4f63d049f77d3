package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/moses-maker/educore-api/internal/models"
)

type dashboardFixture struct {
	service     *studentDashboardService
	submissions *fakeSubmissionRepo
	assignments *fakeAssignmentRepo
	enrollments *fakeEnrollmentRepo
	redis       *miniredis.Miniredis
}

func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	submissions := newFakeSubmissionRepo()
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	enrollments := &fakeEnrollmentRepo{enrollments: map[enrollmentKey]models.Enrollment{}}

	svc := NewStudentDashboardService(enrollments, assignments, submissions, cache, 5*time.Minute, testLogger()).(*studentDashboardService)

	return &dashboardFixture{
		service:     svc,
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		redis:       mr,
	}
}

func (f *dashboardFixture) seedGraded(id, assignmentID, studentID uint, points float64) {
	assignment := f.assignments.assignments[assignmentID]
	submittedAt := assignment.DueDate.Add(-time.Hour)
	f.submissions.submissions[id] = models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusGraded,
		PointsEarned: &points,
		SubmittedAt:  &submittedAt,
		Assignment:   assignment,
	}
}

func TestDashboardAggregatesSubmissionStates(t *testing.T) {
	f := newDashboardFixture(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = fixedClock(now)

	f.enrollments.enrollments[enrollmentKey{5, 10}] = models.Enrollment{ID: 1, StudentID: 5, CourseID: 10, Status: models.EnrollmentStatusActive}

	// Four assignments: one graded passing, one graded failing, one draft,
	// one overdue with no work at all.
	for i := uint(1); i <= 4; i++ {
		f.assignments.assignments[i] = models.Assignment{
			ID:            i,
			CourseID:      10,
			MaxPoints:     100,
			PassingPoints: 60,
			DueDate:       now.Add(-24 * time.Hour),
		}
	}

	f.seedGraded(1, 1, 5, 80)
	f.seedGraded(2, 2, 5, 40)
	f.submissions.submissions[3] = models.Submission{ID: 3, AssignmentID: 3, StudentID: 5, Status: models.SubmissionStatusDraft}

	response, err := f.service.GetDashboard(context.Background(), 5)
	require.NoError(t, err)

	require.Equal(t, uint(5), response.StudentID)
	require.Equal(t, 1, response.EnrolledCourses)
	require.Equal(t, 4, response.TotalAssignments)
	require.Equal(t, 1, response.DraftSubmissions)
	require.Equal(t, 0, response.PendingGrading)
	require.Equal(t, 2, response.GradedSubmissions)
	require.Equal(t, 1, response.PassingSubmissions)
	require.Equal(t, 1, response.OverdueWithoutWork)
	require.NotNil(t, response.AveragePercentage)
	require.InDelta(t, 60, *response.AveragePercentage, 1e-9)
}

func TestDashboardServesFromCache(t *testing.T) {
	f := newDashboardFixture(t)

	f.enrollments.enrollments[enrollmentKey{5, 10}] = models.Enrollment{ID: 1, StudentID: 5, CourseID: 10, Status: models.EnrollmentStatusActive}
	f.assignments.assignments[1] = models.Assignment{ID: 1, CourseID: 10, MaxPoints: 100, PassingPoints: 60, DueDate: time.Now().Add(24 * time.Hour)}

	first, err := f.service.GetDashboard(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, first.TotalAssignments)
	require.True(t, f.redis.Exists(fmt.Sprintf("dashboard:student:%d", 5)))

	// New data appears only after the cached entry expires.
	f.assignments.assignments[2] = models.Assignment{ID: 2, CourseID: 10, MaxPoints: 50, PassingPoints: 25, DueDate: time.Now().Add(48 * time.Hour)}

	cached, err := f.service.GetDashboard(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, cached.TotalAssignments)

	f.redis.FastForward(6 * time.Minute)

	fresh, err := f.service.GetDashboard(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.TotalAssignments)
}

func TestDashboardSurvivesCacheOutage(t *testing.T) {
	f := newDashboardFixture(t)
	f.enrollments.enrollments[enrollmentKey{5, 10}] = models.Enrollment{ID: 1, StudentID: 5, CourseID: 10, Status: models.EnrollmentStatusActive}
	f.assignments.assignments[1] = models.Assignment{ID: 1, CourseID: 10, MaxPoints: 100, PassingPoints: 60, DueDate: time.Now().Add(24 * time.Hour)}

	f.redis.Close()

	response, err := f.service.GetDashboard(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, response.TotalAssignments)
}
