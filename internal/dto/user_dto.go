package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	PhoneNumber string     `json:"phone_number"`
	Bio         string     `json:"bio"`
	IsActive    bool       `json:"is_active"`
	DateJoined  time.Time  `json:"date_joined"`
	LastLogin   *time.Time `json:"last_login"`
}

// SelfUpdateRequest is the profile-update contract available to every user.
// Role, email and account status are deliberately not part of this type;
// those fields are only reachable through AdminUpdateUserRequest.
type SelfUpdateRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
}

// AdminUpdateUserRequest is the privileged update contract.
type AdminUpdateUserRequest struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=100"`
	LastName    *string `json:"last_name" validate:"omitempty,max=100"`
	Role        *string `json:"role" validate:"omitempty,oneof=student lecturer admin"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// UserListRequest describes admin user listing filters.
type UserListRequest struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Role     string `query:"role" validate:"omitempty,oneof=student lecturer admin"`
	Search   string `query:"search"`
}

// UserListResponse pairs users with pagination metadata.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:          model.ID,
		Email:       model.Email,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		FullName:    model.FullName(),
		Role:        string(model.Role),
		PhoneNumber: model.PhoneNumber,
		Bio:         model.Bio,
		IsActive:    model.IsActive,
		DateJoined:  model.DateJoined,
		LastLogin:   model.LastLogin,
	}
}

// NewUserResponseSlice converts user models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}
	return responses
}
