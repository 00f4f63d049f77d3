package models

import (
	"strings"
	"time"
)

// UserRole enumerates the roles a user can hold.
type UserRole string

const (
	// RoleStudent is the default self-registered role.
	RoleStudent UserRole = "student"
	// RoleLecturer can create assignments and grade submissions.
	RoleLecturer UserRole = "lecturer"
	// RoleAdmin has full access to every surface.
	RoleAdmin UserRole = "admin"
)

// User represents an account in the LMS.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100;not null" json:"first_name"`
	LastName     string     `gorm:"size:100;not null" json:"last_name"`
	Role         UserRole   `gorm:"size:20;not null;default:student" json:"role"`
	PhoneNumber  string     `gorm:"size:32" json:"phone_number"`
	Bio          string     `gorm:"type:text" json:"bio"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	DateJoined   time.Time  `gorm:"autoCreateTime" json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
}

// FullName joins the first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanGrade reports whether the user may set grading fields on submissions.
func (u User) CanGrade() bool {
	return u.Role == RoleLecturer || u.Role == RoleAdmin
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
