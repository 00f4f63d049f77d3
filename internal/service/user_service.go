package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// UserService exposes profile reads and the two distinct update contracts:
// self-service profile updates and privileged admin updates. Keeping them as
// separate typed payloads means role and account status are structurally
// unreachable from the self-service path.
type UserService interface {
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	UpdateSelf(ctx context.Context, actor Actor, payload dto.SelfUpdateRequest) (dto.UserResponse, error)
	AdminUpdate(ctx context.Context, actor Actor, id uint, payload dto.AdminUpdateUserRequest) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserListResponse{}, err
	}

	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	users, total, err := s.users.List(ctx, repository.UserFilter{
		Page:     req.Page,
		PageSize: pageSize,
		Role:     req.Role,
		Search:   req.Search,
	})
	if err != nil {
		return dto.UserListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	return dto.UserListResponse{
		Items: dto.NewUserResponseSlice(users),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *userService) UpdateSelf(ctx context.Context, actor Actor, payload dto.SelfUpdateRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrNotFound
		}
		return dto.UserResponse{}, err
	}

	if payload.FirstName != nil {
		user.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil {
		user.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
	}
	if payload.Bio != nil {
		user.Bio = sanitizeText(*payload.Bio)
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) AdminUpdate(ctx context.Context, actor Actor, id uint, payload dto.AdminUpdateUserRequest) (dto.UserResponse, error) {
	if actor.Role != models.RoleAdmin {
		return dto.UserResponse{}, fmt.Errorf("admin update requires admin role: %w", ErrForbidden)
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return dto.UserResponse{}, err
	}

	if payload.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*payload.Email))
	}
	if payload.FirstName != nil {
		user.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil {
		user.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.Role != nil {
		user.Role = models.UserRole(*payload.Role)
	}
	if payload.PhoneNumber != nil {
		user.PhoneNumber = strings.TrimSpace(*payload.PhoneNumber)
	}
	if payload.Bio != nil {
		user.Bio = sanitizeText(*payload.Bio)
	}
	if payload.IsActive != nil {
		user.IsActive = *payload.IsActive
	}

	if err := s.users.Update(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, fmt.Errorf("email already in use: %w", ErrConflict)
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Uint("admin_id", actor.ID).Msg("user updated by admin")

	return dto.NewUserResponse(user), nil
}
