package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// CourseCreateRequest describes the payload for creating a course.
type CourseCreateRequest struct {
	Code        string    `json:"code" validate:"required,max=20"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	Credits     int       `json:"credits" validate:"required,gte=1,lte=30"`
	MaxStudents int       `json:"max_students" validate:"required,gte=1"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
}

// CourseUpdateRequest describes partial updates to a course.
type CourseUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Credits     *int       `json:"credits" validate:"omitempty,gte=1,lte=30"`
	MaxStudents *int       `json:"max_students" validate:"omitempty,gte=1"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CourseListRequest describes course listing filters.
type CourseListRequest struct {
	Page       int    `query:"page"`
	PageSize   int    `query:"page_size"`
	LecturerID *uint  `query:"lecturer_id"`
	Search     string `query:"search"`
}

// CourseResponse is returned to API clients when viewing courses.
type CourseResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	LecturerID  uint      `json:"lecturer_id"`
	Lecturer    UserLite  `json:"lecturer"`
	Credits     int       `json:"credits"`
	MaxStudents int       `json:"max_students"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// CourseListResponse pairs courses with pagination metadata.
type CourseListResponse struct {
	Items      []CourseResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// UserLite summarizes a user without exposing full profile data.
type UserLite struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// NewCourseResponse converts a Course model into a DTO.
func NewCourseResponse(model models.Course) CourseResponse {
	response := CourseResponse{
		ID:          model.ID,
		Code:        model.Code,
		Title:       model.Title,
		Description: model.Description,
		LecturerID:  model.LecturerID,
		Credits:     model.Credits,
		MaxStudents: model.MaxStudents,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		CreatedAt:   model.CreatedAt,
	}

	if model.Lecturer.ID != 0 {
		response.Lecturer = UserLite{
			ID:       model.Lecturer.ID,
			FullName: model.Lecturer.FullName(),
			Email:    model.Lecturer.Email,
		}
	}

	return response
}

// NewCourseResponseSlice converts course models into DTOs.
func NewCourseResponseSlice(courses []models.Course) []CourseResponse {
	responses := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, NewCourseResponse(course))
	}
	return responses
}
