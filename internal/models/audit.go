package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditAction enumerates the auditable action kinds.
type AuditAction string

const (
	AuditActionCreate         AuditAction = "create"
	AuditActionRead           AuditAction = "read"
	AuditActionUpdate         AuditAction = "update"
	AuditActionDelete         AuditAction = "delete"
	AuditActionLogin          AuditAction = "login"
	AuditActionLogout         AuditAction = "logout"
	AuditActionAccessDenied   AuditAction = "access_denied"
	AuditActionGradeSubmitted AuditAction = "grade_submitted"
	AuditActionEnrollment     AuditAction = "enrollment"
	AuditActionSubmission     AuditAction = "submission"
)

// AuditLog is an append-only record of who did what to which entity. The
// affected entity is referenced by a (target_type, target_id) pair so the log
// does not depend on the concrete entity type; resolution happens lazily
// through the target registry. Entries are never updated or deleted.
type AuditLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	UserID        *uint             `gorm:"index:idx_audit_user_action_ts" json:"user_id"`
	Action        AuditAction       `gorm:"size:20;not null;index:idx_audit_user_action_ts;index:idx_audit_action_ts" json:"action"`
	Description   string            `gorm:"type:text;not null" json:"description"`
	TargetType    string            `gorm:"size:50;index:idx_audit_target" json:"target_type"`
	TargetID      *uint             `gorm:"index:idx_audit_target" json:"target_id"`
	IPAddress     string            `gorm:"size:45" json:"ip_address"`
	UserAgent     string            `gorm:"type:text" json:"user_agent"`
	RequestMethod string            `gorm:"size:10" json:"request_method"`
	RequestPath   string            `gorm:"size:500" json:"request_path"`
	ExtraData     datatypes.JSONMap `gorm:"type:json" json:"extra_data"`
	Success       bool              `gorm:"not null;default:true" json:"success"`
	ErrorMessage  string            `gorm:"type:text" json:"error_message"`
	Timestamp     time.Time         `gorm:"autoCreateTime;index;index:idx_audit_user_action_ts;index:idx_audit_action_ts" json:"timestamp"`
	User          *User             `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user"`
}
