package dto

import (
	"time"

	"github.com/moses-maker/educore-api/internal/models"
)

// AuditLogListRequest describes audit trail query filters.
type AuditLogListRequest struct {
	Page       int        `query:"page"`
	PageSize   int        `query:"page_size"`
	UserID     uint       `query:"user_id"`
	Action     string     `query:"action" validate:"omitempty,oneof=create read update delete login logout access_denied grade_submitted enrollment submission"`
	TargetType string     `query:"target_type"`
	Success    *bool      `query:"success"`
	From       *time.Time `query:"from"`
	Until      *time.Time `query:"until"`
}

// AuditLogResponse is the read-side view of an audit entry.
type AuditLogResponse struct {
	ID            uint                   `json:"id"`
	UserID        *uint                  `json:"user_id"`
	Actor         *UserLite              `json:"actor"`
	Action        string                 `json:"action"`
	Description   string                 `json:"description"`
	TargetType    string                 `json:"target_type,omitempty"`
	TargetID      *uint                  `json:"target_id,omitempty"`
	IPAddress     string                 `json:"ip_address,omitempty"`
	UserAgent     string                 `json:"user_agent,omitempty"`
	RequestMethod string                 `json:"request_method,omitempty"`
	RequestPath   string                 `json:"request_path,omitempty"`
	ExtraData     map[string]interface{} `json:"extra_data"`
	Success       bool                   `json:"success"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
}

// AuditLogListResponse pairs audit entries with pagination metadata.
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewAuditLogResponse converts an AuditLog model into a DTO.
func NewAuditLogResponse(model models.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:            model.ID,
		UserID:        model.UserID,
		Action:        string(model.Action),
		Description:   model.Description,
		TargetType:    model.TargetType,
		TargetID:      model.TargetID,
		IPAddress:     model.IPAddress,
		UserAgent:     model.UserAgent,
		RequestMethod: model.RequestMethod,
		RequestPath:   model.RequestPath,
		ExtraData:     model.ExtraData,
		Success:       model.Success,
		ErrorMessage:  model.ErrorMessage,
		Timestamp:     model.Timestamp,
	}

	if model.User != nil && model.User.ID != 0 {
		response.Actor = &UserLite{
			ID:       model.User.ID,
			FullName: model.User.FullName(),
			Email:    model.User.Email,
		}
	}

	return response
}

// NewAuditLogResponseSlice converts audit log models into DTOs.
func NewAuditLogResponseSlice(entries []models.AuditLog) []AuditLogResponse {
	responses := make([]AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewAuditLogResponse(entry))
	}
	return responses
}
