package models

import "time"

// EnrollmentStatus enumerates the lifecycle of a course enrollment.
type EnrollmentStatus string

const (
	// EnrollmentStatusActive marks a current enrollment.
	EnrollmentStatusActive EnrollmentStatus = "active"
	// EnrollmentStatusCompleted marks a finished course.
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	// EnrollmentStatusDropped marks a withdrawal.
	EnrollmentStatusDropped EnrollmentStatus = "dropped"
)

// Enrollment links a student to a course. A student may appear at most once
// per course, enforced by a composite unique index.
type Enrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	StudentID  uint             `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"student_id"`
	CourseID   uint             `gorm:"not null;uniqueIndex:idx_enrollment_student_course" json:"course_id"`
	Status     EnrollmentStatus `gorm:"size:20;not null;default:active" json:"status"`
	EnrolledAt time.Time        `gorm:"autoCreateTime" json:"enrolled_at"`
	Student    User             `gorm:"foreignKey:StudentID" json:"student"`
	Course     Course           `gorm:"foreignKey:CourseID" json:"course"`
}

// IsActive reports whether the enrollment currently grants course membership.
func (e Enrollment) IsActive() bool {
	return e.Status == EnrollmentStatusActive
}
