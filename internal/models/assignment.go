package models

import "time"

// AssignmentType enumerates the kinds of graded work a course can contain.
type AssignmentType string

const (
	// AssignmentTypeHomework is regular coursework.
	AssignmentTypeHomework AssignmentType = "homework"
	// AssignmentTypeQuiz is a short assessment.
	AssignmentTypeQuiz AssignmentType = "quiz"
	// AssignmentTypeProject is a long-running deliverable.
	AssignmentTypeProject AssignmentType = "project"
	// AssignmentTypeExam is a formal examination.
	AssignmentTypeExam AssignmentType = "exam"
)

// Assignment represents graded work attached to a course.
type Assignment struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	CourseID            uint           `gorm:"not null;index" json:"course_id"`
	Title               string         `gorm:"size:255;not null" json:"title"`
	Description         string         `gorm:"type:text" json:"description"`
	AssignmentType      AssignmentType `gorm:"size:20;not null;default:homework" json:"assignment_type"`
	MaxPoints           float64        `gorm:"not null" json:"max_points"`
	PassingPoints       float64        `gorm:"not null" json:"passing_points"`
	DueDate             time.Time      `gorm:"not null" json:"due_date"`
	AvailableFrom       *time.Time     `json:"available_from"`
	AvailableUntil      *time.Time     `json:"available_until"`
	AllowLateSubmission bool           `gorm:"not null;default:false" json:"allow_late_submission"`
	LatePenaltyPerDay   float64        `gorm:"not null;default:0" json:"late_penalty_per_day"`
	CreatedByID         uint           `gorm:"not null" json:"created_by_id"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	Course              Course         `gorm:"foreignKey:CourseID" json:"course"`
	CreatedBy           User           `gorm:"foreignKey:CreatedByID" json:"created_by"`
}

// IsAvailable reports whether the assignment accepts work at the given
// instant. Open-ended bounds are treated as unbounded.
func (a Assignment) IsAvailable(reference time.Time) bool {
	if a.AvailableFrom != nil && reference.Before(*a.AvailableFrom) {
		return false
	}
	if a.AvailableUntil != nil && reference.After(*a.AvailableUntil) {
		return false
	}
	return true
}

// IsOverdue reports whether the deadline has already passed.
func (a Assignment) IsOverdue(reference time.Time) bool {
	return reference.After(a.DueDate)
}
