package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/observability"
	"github.com/moses-maker/educore-api/internal/repository"
)

// AuditEntry captures the details required to persist an audit record.
type AuditEntry struct {
	UserID        *uint
	Action        models.AuditAction
	Description   string
	TargetType    string
	TargetID      *uint
	IPAddress     string
	UserAgent     string
	RequestMethod string
	RequestPath   string
	ExtraData     map[string]interface{}
	Success       bool
	ErrorMessage  string
}

// AuditRecorder records an action against an arbitrary entity. Record is
// fire-and-forget from the caller's perspective: a persistence failure is
// logged internally and never aborts the triggering business operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) uint
}

// TargetLoader resolves a concrete record from its numeric id.
type TargetLoader func(ctx context.Context, id uint) (interface{}, error)

// AuditService exposes the recorder plus the read side of the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
	Get(ctx context.Context, id uint) (dto.AuditLogResponse, error)
	RegisterTarget(targetType string, loader TargetLoader)
	ResolveTarget(ctx context.Context, targetType string, id uint) (interface{}, error)
}

type auditService struct {
	repo    repository.AuditLogRepository
	logger  zerolog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	loaders map[string]TargetLoader
}

// NewAuditService constructs the audit service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:    repo,
		logger:  logger.With().Str("component", "audit_service").Logger(),
		now:     time.Now,
		loaders: make(map[string]TargetLoader),
	}
}

// Record appends an audit entry. Returns the new entry's id, or 0 when the
// write failed; the failure itself is swallowed so a broken audit path cannot
// take down the primary workflow.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) uint {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("audit recorder panicked")
		}
	}()

	if entry.Action == "" {
		s.logger.Warn().Msg("audit entry dropped: action is required")
		return 0
	}

	model := models.AuditLog{
		UserID:        entry.UserID,
		Action:        entry.Action,
		Description:   strings.TrimSpace(entry.Description),
		TargetType:    strings.ToLower(strings.TrimSpace(entry.TargetType)),
		TargetID:      entry.TargetID,
		IPAddress:     entry.IPAddress,
		UserAgent:     truncate(entry.UserAgent, 500),
		RequestMethod: entry.RequestMethod,
		RequestPath:   truncate(entry.RequestPath, 500),
		ExtraData:     sanitizeExtraData(entry.ExtraData),
		Success:       entry.Success,
		ErrorMessage:  entry.ErrorMessage,
		Timestamp:     s.now(),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		observability.AuditWrites().WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).
			Str("action", string(entry.Action)).
			Str("path", entry.RequestPath).
			Msg("failed to persist audit log")
		return 0
	}

	observability.AuditWrites().WithLabelValues("ok").Inc()
	return model.ID
}

// RegisterTarget associates a type tag with a loader. Each referenceable
// entity type registers itself at startup; resolution never uses reflection.
func (s *auditService) RegisterTarget(targetType string, loader TargetLoader) {
	tag := strings.ToLower(strings.TrimSpace(targetType))
	if tag == "" || loader == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaders[tag] = loader
}

// ResolveTarget performs the lazy second lookup from (type tag, id) to the
// concrete record.
func (s *auditService) ResolveTarget(ctx context.Context, targetType string, id uint) (interface{}, error) {
	tag := strings.ToLower(strings.TrimSpace(targetType))

	s.mu.RLock()
	loader, ok := s.loaders[tag]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no loader registered for target type %q: %w", targetType, ErrNotFound)
	}

	return loader(ctx, id)
}

func (s *auditService) List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	filter := repository.AuditLogFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Action:     strings.TrimSpace(req.Action),
		TargetType: strings.ToLower(strings.TrimSpace(req.TargetType)),
		Success:    req.Success,
		From:       req.From,
		Until:      req.Until,
	}
	if req.UserID > 0 {
		filter.UserID = &req.UserID
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	pagination := dto.PaginationMeta{
		Page:       page,
		PageSize:   filter.PageSize,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}

	return dto.AuditLogListResponse{Items: dto.NewAuditLogResponseSlice(entries), Pagination: pagination}, nil
}

func (s *auditService) Get(ctx context.Context, id uint) (dto.AuditLogResponse, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dto.AuditLogResponse{}, err
	}
	return dto.NewAuditLogResponse(entry), nil
}

func sanitizeExtraData(extra map[string]interface{}) datatypes.JSONMap {
	if extra == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range extra {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			sanitized[key] = map[string]interface{}(sanitizeExtraData(nested))
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
