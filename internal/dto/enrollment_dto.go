package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// EnrollmentResponse is returned to API clients when viewing enrollments.
type EnrollmentResponse struct {
	ID         uint       `json:"id"`
	StudentID  uint       `json:"student_id"`
	CourseID   uint       `json:"course_id"`
	Status     string     `json:"status"`
	EnrolledAt time.Time  `json:"enrolled_at"`
	Student    UserLite   `json:"student"`
	Course     CourseLite `json:"course"`
}

// CourseLite summarizes a course in nested responses.
type CourseLite struct {
	ID    uint   `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// NewEnrollmentResponse converts an Enrollment model into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	response := EnrollmentResponse{
		ID:         model.ID,
		StudentID:  model.StudentID,
		CourseID:   model.CourseID,
		Status:     string(model.Status),
		EnrolledAt: model.EnrolledAt,
	}

	if model.Student.ID != 0 {
		response.Student = UserLite{
			ID:       model.Student.ID,
			FullName: model.Student.FullName(),
			Email:    model.Student.Email,
		}
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

// NewEnrollmentResponseSlice converts enrollment models into DTOs.
func NewEnrollmentResponseSlice(enrollments []models.Enrollment) []EnrollmentResponse {
	responses := make([]EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, NewEnrollmentResponse(enrollment))
	}
	return responses
}
