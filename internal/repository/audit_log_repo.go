package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/models"
)

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	Page       int
	PageSize   int
	UserID     *uint
	Action     string
	TargetType string
	Success    *bool
	From       *time.Time
	Until      *time.Time
}

// AuditLogRepository persists the audit trail. The log is append-only: no
// update or delete operation is exposed.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	GetByID(ctx context.Context, id uint) (models.AuditLog, error)
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) GetByID(ctx context.Context, id uint) (models.AuditLog, error) {
	var entry models.AuditLog
	if err := r.db.WithContext(ctx).Preload("User").First(&entry, id).Error; err != nil {
		return models.AuditLog{}, err
	}
	return entry, nil
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{}).Preload("User")

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}

	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}

	if filter.From != nil {
		query = query.Where("timestamp >= ?", *filter.From)
	}

	if filter.Until != nil {
		query = query.Where("timestamp <= ?", *filter.Until)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var entries []models.AuditLog
	if err := query.Order("timestamp DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
