package models

import "time"

// SubmissionStatus enumerates the grading workflow states.
type SubmissionStatus string

const (
	// SubmissionStatusDraft is work in progress, editable by the student.
	SubmissionStatusDraft SubmissionStatus = "draft"
	// SubmissionStatusSubmitted is handed in and awaiting grading.
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	// SubmissionStatusGraded carries a final score.
	SubmissionStatusGraded SubmissionStatus = "graded"
)

// Submission represents a student's answer to an assignment. A student may
// hold at most one submission per assignment, enforced by a composite unique
// index so concurrent creates cannot both win.
type Submission struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AssignmentID uint             `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint             `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	Content      string           `gorm:"type:text" json:"content"`
	Status       SubmissionStatus `gorm:"size:20;not null;default:draft" json:"status"`
	PointsEarned *float64         `json:"points_earned"`
	Feedback     string           `gorm:"type:text" json:"feedback"`
	GradedByID   *uint            `json:"graded_by_id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	SubmittedAt  *time.Time       `json:"submitted_at"`
	GradedAt     *time.Time       `json:"graded_at"`
	Assignment   Assignment       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      User             `gorm:"foreignKey:StudentID" json:"student"`
	GradedBy     *User            `gorm:"foreignKey:GradedByID" json:"graded_by"`
}

// IsGraded reports whether the submission carries a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// IsLate reports whether the submission was handed in after the deadline.
// A submission that has not been handed in yet is never late.
func (s Submission) IsLate() bool {
	if s.SubmittedAt == nil {
		return false
	}
	return s.SubmittedAt.After(s.Assignment.DueDate)
}

// DaysLate counts whole days between the deadline and the hand-in time,
// truncated toward zero and floored at 0 for on-time submissions.
func (s Submission) DaysLate() int {
	if !s.IsLate() {
		return 0
	}
	return int(s.SubmittedAt.Sub(s.Assignment.DueDate).Hours() / 24)
}

// PercentageScore returns the raw score as a percentage of the assignment
// maximum, or nil while ungraded. Late penalties are intentionally not
// applied here; see EffectiveScore.
func (s Submission) PercentageScore() *float64 {
	if s.PointsEarned == nil || s.Assignment.MaxPoints == 0 {
		return nil
	}
	pct := *s.PointsEarned / s.Assignment.MaxPoints * 100
	return &pct
}

// IsPassing reports whether the earned points meet the passing threshold.
// The boundary is inclusive: exactly-passing counts as passing. Returns nil
// while ungraded.
func (s Submission) IsPassing() *bool {
	if s.PointsEarned == nil {
		return nil
	}
	passing := *s.PointsEarned >= s.Assignment.PassingPoints
	return &passing
}

// EffectiveScore returns the score after applying the assignment's late
// penalty, when late submissions are allowed and the submission is late.
// The penalty is LatePenaltyPerDay percent of MaxPoints per whole day late,
// capped so the result never drops below zero. Returns nil while ungraded.
func (s Submission) EffectiveScore() *float64 {
	if s.PointsEarned == nil {
		return nil
	}
	score := *s.PointsEarned
	if !s.Assignment.AllowLateSubmission || !s.IsLate() {
		return &score
	}
	penalty := float64(s.DaysLate()) * s.Assignment.LatePenaltyPerDay / 100 * s.Assignment.MaxPoints
	if penalty > score {
		penalty = score
	}
	effective := score - penalty
	return &effective
}
