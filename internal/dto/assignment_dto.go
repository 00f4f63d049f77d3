package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	CourseID            uint       `json:"course_id" validate:"required,gt=0"`
	Title               string     `json:"title" validate:"required,max=255"`
	Description         string     `json:"description" validate:"omitempty,max=10000"`
	AssignmentType      string     `json:"assignment_type" validate:"required,oneof=homework quiz project exam"`
	MaxPoints           float64    `json:"max_points" validate:"required,gt=0"`
	PassingPoints       float64    `json:"passing_points" validate:"gte=0"`
	DueDate             time.Time  `json:"due_date" validate:"required"`
	AvailableFrom       *time.Time `json:"available_from"`
	AvailableUntil      *time.Time `json:"available_until"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	LatePenaltyPerDay   float64    `json:"late_penalty_per_day" validate:"gte=0"`
}

// AssignmentUpdateRequest describes partial updates to an assignment.
type AssignmentUpdateRequest struct {
	Title               *string    `json:"title" validate:"omitempty,max=255"`
	Description         *string    `json:"description" validate:"omitempty,max=10000"`
	AssignmentType      *string    `json:"assignment_type" validate:"omitempty,oneof=homework quiz project exam"`
	MaxPoints           *float64   `json:"max_points" validate:"omitempty,gt=0"`
	PassingPoints       *float64   `json:"passing_points" validate:"omitempty,gte=0"`
	DueDate             *time.Time `json:"due_date"`
	AvailableFrom       *time.Time `json:"available_from"`
	AvailableUntil      *time.Time `json:"available_until"`
	AllowLateSubmission *bool      `json:"allow_late_submission"`
	LatePenaltyPerDay   *float64   `json:"late_penalty_per_day" validate:"omitempty,gte=0"`
}

// AssignmentResponse is returned to API clients when viewing assignments.
// IsAvailable and IsOverdue are computed against the serving clock, never
// stored.
type AssignmentResponse struct {
	ID                  uint       `json:"id"`
	CourseID            uint       `json:"course_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	AssignmentType      string     `json:"assignment_type"`
	MaxPoints           float64    `json:"max_points"`
	PassingPoints       float64    `json:"passing_points"`
	DueDate             time.Time  `json:"due_date"`
	AvailableFrom       *time.Time `json:"available_from"`
	AvailableUntil      *time.Time `json:"available_until"`
	AllowLateSubmission bool       `json:"allow_late_submission"`
	LatePenaltyPerDay   float64    `json:"late_penalty_per_day"`
	CreatedByID         uint       `json:"created_by_id"`
	IsAvailable         bool       `json:"is_available"`
	IsOverdue           bool       `json:"is_overdue"`
	CreatedAt           time.Time  `json:"created_at"`
	Course              CourseLite `json:"course"`
}

// NewAssignmentResponse converts an Assignment model into a DTO, computing
// the availability signals against the given instant.
func NewAssignmentResponse(model models.Assignment, now time.Time) AssignmentResponse {
	response := AssignmentResponse{
		ID:                  model.ID,
		CourseID:            model.CourseID,
		Title:               model.Title,
		Description:         model.Description,
		AssignmentType:      string(model.AssignmentType),
		MaxPoints:           model.MaxPoints,
		PassingPoints:       model.PassingPoints,
		DueDate:             model.DueDate,
		AvailableFrom:       model.AvailableFrom,
		AvailableUntil:      model.AvailableUntil,
		AllowLateSubmission: model.AllowLateSubmission,
		LatePenaltyPerDay:   model.LatePenaltyPerDay,
		CreatedByID:         model.CreatedByID,
		IsAvailable:         model.IsAvailable(now),
		IsOverdue:           model.IsOverdue(now),
		CreatedAt:           model.CreatedAt,
	}

	if model.Course.ID != 0 {
		response.Course = CourseLite{
			ID:    model.Course.ID,
			Code:  model.Course.Code,
			Title: model.Course.Title,
		}
	}

	return response
}

// NewAssignmentResponseSlice converts assignment models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, now time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, now))
	}
	return responses
}
