package models

import "time"

// Course represents a unit of study taught by a lecturer.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	LecturerID  uint      `gorm:"not null;index" json:"lecturer_id"`
	Credits     int       `gorm:"not null;default:3" json:"credits"`
	MaxStudents int       `gorm:"not null;default:50" json:"max_students"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Lecturer    User      `gorm:"foreignKey:LecturerID" json:"lecturer"`
}
