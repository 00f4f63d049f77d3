package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/events"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

type fakeSubmissionRepo struct {
	nextID      uint
	submissions map[uint]models.Submission
	createErr   error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]models.Submission{}}
}

func (f *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	var out []models.Submission
	for _, submission := range f.submissions {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		out = append(out, submission)
	}
	return out, nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	submission.ID = f.nextID
	submission.CreatedAt = time.Now()
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(_ context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Transition(_ context.Context, submission *models.Submission, from ...models.SubmissionStatus) error {
	stored, ok := f.submissions[submission.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	allowed := false
	for _, status := range from {
		if stored.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return gorm.ErrRecordNotFound
	}
	stored.Content = submission.Content
	stored.Status = submission.Status
	stored.PointsEarned = submission.PointsEarned
	stored.Feedback = submission.Feedback
	stored.GradedByID = submission.GradedByID
	stored.SubmittedAt = submission.SubmittedAt
	stored.GradedAt = submission.GradedAt
	f.submissions[submission.ID] = stored
	return nil
}

type fakeAssignmentRepo struct {
	assignments map[uint]models.Assignment
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, assignment := range f.assignments {
		if filter.CourseID != nil && assignment.CourseID != *filter.CourseID {
			continue
		}
		if filter.Type != nil && assignment.AssignmentType != *filter.Type {
			continue
		}
		out = append(out, assignment)
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	if assignment.ID == 0 {
		assignment.ID = uint(len(f.assignments) + 1)
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Delete(_ context.Context, id uint) error {
	delete(f.assignments, id)
	return nil
}

type enrollmentKey struct {
	studentID uint
	courseID  uint
}

type fakeEnrollmentRepo struct {
	enrollments map[enrollmentKey]models.Enrollment
}

func (f *fakeEnrollmentRepo) GetByID(_ context.Context, id uint) (models.Enrollment, error) {
	for _, enrollment := range f.enrollments {
		if enrollment.ID == id {
			return enrollment, nil
		}
	}
	return models.Enrollment{}, gorm.ErrRecordNotFound
}

func (f *fakeEnrollmentRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID uint) (models.Enrollment, error) {
	enrollment, ok := f.enrollments[enrollmentKey{studentID, courseID}]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (f *fakeEnrollmentRepo) List(_ context.Context, filter repository.EnrollmentFilter) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, enrollment := range f.enrollments {
		if filter.StudentID != nil && enrollment.StudentID != *filter.StudentID {
			continue
		}
		if filter.CourseID != nil && enrollment.CourseID != *filter.CourseID {
			continue
		}
		if filter.Status != nil && enrollment.Status != *filter.Status {
			continue
		}
		out = append(out, enrollment)
	}
	return out, nil
}

func (f *fakeEnrollmentRepo) CountActive(_ context.Context, courseID uint) (int64, error) {
	var count int64
	for _, enrollment := range f.enrollments {
		if enrollment.CourseID == courseID && enrollment.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	key := enrollmentKey{enrollment.StudentID, enrollment.CourseID}
	if _, exists := f.enrollments[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	if enrollment.ID == 0 {
		enrollment.ID = uint(len(f.enrollments) + 1)
	}
	enrollment.EnrolledAt = time.Now()
	f.enrollments[key] = *enrollment
	return nil
}

func (f *fakeEnrollmentRepo) Update(_ context.Context, enrollment *models.Enrollment) error {
	f.enrollments[enrollmentKey{enrollment.StudentID, enrollment.CourseID}] = *enrollment
	return nil
}

type submissionFixture struct {
	service     *submissionService
	submissions *fakeSubmissionRepo
	assignments *fakeAssignmentRepo
	enrollments *fakeEnrollmentRepo
	audit       *recordingAudit
	publisher   *recordingPublisher
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	submissions := newFakeSubmissionRepo()
	assignments := &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
	enrollments := &fakeEnrollmentRepo{enrollments: map[enrollmentKey]models.Enrollment{}}
	audit := &recordingAudit{}
	publisher := &recordingPublisher{}

	svc := NewSubmissionService(submissions, assignments, enrollments, validator.New(), audit, publisher, testLogger()).(*submissionService)

	return &submissionFixture{
		service:     svc,
		submissions: submissions,
		assignments: assignments,
		enrollments: enrollments,
		audit:       audit,
		publisher:   publisher,
	}
}

func (f *submissionFixture) seedAssignment(id, courseID uint, due time.Time) models.Assignment {
	assignment := models.Assignment{
		ID:             id,
		CourseID:       courseID,
		Title:          "Week 1 Essay",
		AssignmentType: models.AssignmentTypeHomework,
		MaxPoints:      100,
		PassingPoints:  60,
		DueDate:        due,
	}
	f.assignments.assignments[id] = assignment
	return assignment
}

func (f *submissionFixture) seedEnrollment(studentID, courseID uint, status models.EnrollmentStatus) {
	key := enrollmentKey{studentID, courseID}
	f.enrollments.enrollments[key] = models.Enrollment{
		ID:        uint(len(f.enrollments.enrollments) + 1),
		StudentID: studentID,
		CourseID:  courseID,
		Status:    status,
	}
}

func (f *submissionFixture) seedSubmission(id, assignmentID, studentID uint, status models.SubmissionStatus) models.Submission {
	submission := models.Submission{
		ID:           id,
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      "initial content",
		Status:       status,
		Assignment:   f.assignments.assignments[assignmentID],
	}
	f.submissions.submissions[id] = submission
	if f.submissions.nextID < id {
		f.submissions.nextID = id
	}
	return submission
}

func TestSubmissionCreateRequiresActiveEnrollment(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))

	_, err := f.service.Create(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, dto.SubmissionCreateRequest{AssignmentID: 1, Content: "draft"})
	require.ErrorIs(t, err, ErrNotEnrolled)

	f.seedEnrollment(5, 10, models.EnrollmentStatusDropped)
	_, err = f.service.Create(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, dto.SubmissionCreateRequest{AssignmentID: 1, Content: "draft"})
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestSubmissionCreateOpensDraft(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedEnrollment(5, 10, models.EnrollmentStatusActive)

	response, err := f.service.Create(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, dto.SubmissionCreateRequest{AssignmentID: 1, Content: "my answer"})
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusDraft), response.Status)
	require.Nil(t, response.SubmittedAt)
	require.Nil(t, response.PointsEarned)
}

func TestSubmissionCreateDuplicateSurfacesConflict(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedEnrollment(5, 10, models.EnrollmentStatusActive)
	f.submissions.createErr = gorm.ErrDuplicatedKey

	_, err := f.service.Create(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, dto.SubmissionCreateRequest{AssignmentID: 1, Content: "again"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmissionSubmitStampsTimeOnce(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusDraft)

	handIn := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.service.now = fixedClock(handIn)

	response, err := f.service.Submit(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 7)
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusSubmitted), response.Status)
	require.NotNil(t, response.SubmittedAt)
	require.True(t, response.SubmittedAt.Equal(handIn))

	require.Len(t, f.audit.entries, 1)
	require.Equal(t, models.AuditActionSubmission, f.audit.entries[0].Action)
	require.Equal(t, []string{events.SubjectSubmissionSubmitted}, f.publisher.subjects)

	// A second hand-in is an invalid transition and must not restamp.
	_, err = f.service.Submit(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 7)
	require.ErrorIs(t, err, ErrInvalidState)
	stored := f.submissions.submissions[7]
	require.True(t, stored.SubmittedAt.Equal(handIn))
}

func TestSubmissionSubmitOnlyByOwner(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusDraft)

	_, err := f.service.Submit(context.Background(), Actor{ID: 6, Role: models.RoleStudent}, 7)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmissionEditGradedIsImmutable(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusGraded)

	_, err := f.service.EditContent(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 7, dto.SubmissionEditRequest{Content: "new text"})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmissionEditByOwnerUpdatesContent(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	response, err := f.service.EditContent(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 7, dto.SubmissionEditRequest{Content: "revised answer"})
	require.NoError(t, err)
	require.Equal(t, "revised answer", response.Content)
	require.Equal(t, string(models.SubmissionStatusSubmitted), response.Status)
}

func TestSubmissionGradeRequiresGradingRole(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	_, err := f.service.Grade(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 7, dto.SubmissionGradeRequest{PointsEarned: 80})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubmissionGradeRejectsNegativePoints(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	_, err := f.service.Grade(context.Background(), Actor{ID: 2, Role: models.RoleLecturer}, 7, dto.SubmissionGradeRequest{PointsEarned: -1})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestSubmissionGradeSetsFieldsAndAudits(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	gradedAt := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	f.service.now = fixedClock(gradedAt)

	response, err := f.service.Grade(context.Background(), Actor{ID: 2, Role: models.RoleLecturer}, 7, dto.SubmissionGradeRequest{PointsEarned: 85, Feedback: "solid work"})
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusGraded), response.Status)
	require.NotNil(t, response.PointsEarned)
	require.InDelta(t, 85, *response.PointsEarned, 1e-9)
	require.Equal(t, "solid work", response.Feedback)
	require.NotNil(t, response.GradedByID)
	require.Equal(t, uint(2), *response.GradedByID)
	require.NotNil(t, response.GradedAt)
	require.True(t, response.GradedAt.Equal(gradedAt))

	require.Len(t, f.audit.entries, 1)
	require.Equal(t, models.AuditActionGradeSubmitted, f.audit.entries[0].Action)
	require.Equal(t, "submission", f.audit.entries[0].TargetType)
	require.Equal(t, []string{events.SubjectSubmissionGraded}, f.publisher.subjects)
}

func TestSubmissionGradeDraftDirectly(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusDraft)

	response, err := f.service.Grade(context.Background(), Actor{ID: 3, Role: models.RoleAdmin}, 7, dto.SubmissionGradeRequest{PointsEarned: 0, Feedback: "no work handed in"})
	require.NoError(t, err)
	require.Equal(t, string(models.SubmissionStatusGraded), response.Status)
	require.Nil(t, response.SubmittedAt)
}

func TestSubmissionGradeIdempotentRepeat(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	grader := Actor{ID: 2, Role: models.RoleLecturer}
	payload := dto.SubmissionGradeRequest{PointsEarned: 70, Feedback: "ok"}

	_, err := f.service.Grade(context.Background(), grader, 7, payload)
	require.NoError(t, err)
	require.Len(t, f.audit.entries, 1)

	// Same grader, same grade: no second write, no second audit entry.
	_, err = f.service.Grade(context.Background(), grader, 7, payload)
	require.NoError(t, err)
	require.Len(t, f.audit.entries, 1)
	require.Len(t, f.publisher.subjects, 1)
}

func TestSubmissionRegradeByOtherGrader(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusSubmitted)

	_, err := f.service.Grade(context.Background(), Actor{ID: 2, Role: models.RoleLecturer}, 7, dto.SubmissionGradeRequest{PointsEarned: 70})
	require.NoError(t, err)

	response, err := f.service.Grade(context.Background(), Actor{ID: 3, Role: models.RoleAdmin}, 7, dto.SubmissionGradeRequest{PointsEarned: 75})
	require.NoError(t, err)
	require.InDelta(t, 75, *response.PointsEarned, 1e-9)
	require.Equal(t, uint(3), *response.GradedByID)
	require.Len(t, f.audit.entries, 2)
}

func TestSubmissionListStudentsSeeOnlyTheirOwn(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(7, 1, 5, models.SubmissionStatusDraft)
	f.seedSubmission(8, 1, 6, models.SubmissionStatusSubmitted)

	other := uint(6)
	responses, err := f.service.List(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, dto.SubmissionFilter{StudentID: &other})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Equal(t, uint(5), responses[0].StudentID)
}

func TestSubmissionGetHidesOthersFromStudents(t *testing.T) {
	f := newSubmissionFixture(t)
	f.seedAssignment(1, 10, time.Now().Add(48*time.Hour))
	f.seedSubmission(8, 1, 6, models.SubmissionStatusSubmitted)

	_, err := f.service.Get(context.Background(), Actor{ID: 5, Role: models.RoleStudent}, 8)
	require.ErrorIs(t, err, ErrForbidden)

	response, err := f.service.Get(context.Background(), Actor{ID: 2, Role: models.RoleLecturer}, 8)
	require.NoError(t, err)
	require.Equal(t, uint(8), response.ID)
}
