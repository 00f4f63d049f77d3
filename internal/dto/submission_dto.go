package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// SubmissionCreateRequest describes the payload for opening a draft.
type SubmissionCreateRequest struct {
	AssignmentID uint   `json:"assignment_id" validate:"required,gt=0"`
	Content      string `json:"content" validate:"omitempty,max=100000"`
}

// SubmissionEditRequest updates draft or submitted content.
type SubmissionEditRequest struct {
	Content string `json:"content" validate:"required,max=100000"`
}

// SubmissionGradeRequest describes the grading payload. Scores above the
// assignment maximum are accepted (bonus points), negatives are not.
type SubmissionGradeRequest struct {
	PointsEarned float64 `json:"points_earned" validate:"gte=0"`
	Feedback     string  `json:"feedback" validate:"omitempty,max=10000"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	AssignmentID *uint   `query:"assignment_id"`
	StudentID    *uint   `query:"student_id"`
	Status       *string `query:"status" validate:"omitempty,oneof=draft submitted graded"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
// The derived fields are recomputed on every read from the stored columns;
// PercentageScore and IsPassing report the raw score, EffectiveScore carries
// the late-penalty-adjusted value.
type SubmissionResponse struct {
	ID              uint           `json:"id"`
	AssignmentID    uint           `json:"assignment_id"`
	StudentID       uint           `json:"student_id"`
	Content         string         `json:"content"`
	Status          string         `json:"status"`
	PointsEarned    *float64       `json:"points_earned"`
	Feedback        string         `json:"feedback"`
	GradedByID      *uint          `json:"graded_by_id"`
	CreatedAt       time.Time      `json:"created_at"`
	SubmittedAt     *time.Time     `json:"submitted_at"`
	GradedAt        *time.Time     `json:"graded_at"`
	IsLate          bool           `json:"is_late"`
	DaysLate        int            `json:"days_late"`
	PercentageScore *float64       `json:"percentage_score"`
	IsPassing       *bool          `json:"is_passing"`
	EffectiveScore  *float64       `json:"effective_score"`
	Assignment      AssignmentLite `json:"assignment"`
	Student         UserLite       `json:"student"`
}

// AssignmentLite summarizes an assignment in submission responses.
type AssignmentLite struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	MaxPoints     float64   `json:"max_points"`
	PassingPoints float64   `json:"passing_points"`
	DueDate       time.Time `json:"due_date"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		StudentID:       model.StudentID,
		Content:         model.Content,
		Status:          string(model.Status),
		PointsEarned:    model.PointsEarned,
		Feedback:        model.Feedback,
		GradedByID:      model.GradedByID,
		CreatedAt:       model.CreatedAt,
		SubmittedAt:     model.SubmittedAt,
		GradedAt:        model.GradedAt,
		IsLate:          model.IsLate(),
		DaysLate:        model.DaysLate(),
		PercentageScore: model.PercentageScore(),
		IsPassing:       model.IsPassing(),
		EffectiveScore:  model.EffectiveScore(),
	}

	if model.Assignment.ID != 0 {
		response.Assignment = AssignmentLite{
			ID:            model.Assignment.ID,
			Title:         model.Assignment.Title,
			MaxPoints:     model.Assignment.MaxPoints,
			PassingPoints: model.Assignment.PassingPoints,
			DueDate:       model.Assignment.DueDate,
		}
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:       model.Student.ID,
			FullName: model.Student.FullName(),
			Email:    model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
