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

// CourseService manages courses and answers membership questions for the
// grading workflow.
type CourseService interface {
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	IsTeaching(ctx context.Context, userID, courseID uint) (bool, error)
}

type courseService struct {
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses repository.CourseRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:   courses,
		validator: validate,
		logger:    logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *courseService) List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	courses, total, err := s.courses.List(ctx, repository.CourseFilter{
		Page:       req.Page,
		PageSize:   pageSize,
		LecturerID: req.LecturerID,
		Search:     req.Search,
	})
	if err != nil {
		return dto.CourseListResponse{}, err
	}

	page := req.Page
	if page <= 0 {
		page = 1
	}

	return dto.CourseListResponse{
		Items: dto.NewCourseResponseSlice(courses),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *courseService) Create(ctx context.Context, actor Actor, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if !actor.CanGrade() {
		return dto.CourseResponse{}, fmt.Errorf("course creation requires lecturer or admin role: %w", ErrForbidden)
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Code:        strings.ToUpper(strings.TrimSpace(payload.Code)),
		Title:       strings.TrimSpace(payload.Title),
		Description: sanitizeText(payload.Description),
		LecturerID:  actor.ID,
		Credits:     payload.Credits,
		MaxStudents: payload.MaxStudents,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.CourseResponse{}, fmt.Errorf("course code already exists: %w", ErrConflict)
		}
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Str("code", course.Code).Msg("course created")

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return dto.CourseResponse{}, err
	}

	if actor.Role != models.RoleAdmin && course.LecturerID != actor.ID {
		return dto.CourseResponse{}, fmt.Errorf("only the course lecturer may update it: %w", ErrForbidden)
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = sanitizeText(*payload.Description)
	}
	if payload.Credits != nil {
		course.Credits = *payload.Credits
	}
	if payload.MaxStudents != nil {
		course.MaxStudents = *payload.MaxStudents
	}
	if payload.StartDate != nil {
		course.StartDate = *payload.StartDate
	}
	if payload.EndDate != nil {
		course.EndDate = *payload.EndDate
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course), nil
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return err
	}

	if actor.Role != models.RoleAdmin && course.LecturerID != actor.ID {
		return fmt.Errorf("only the course lecturer may delete it: %w", ErrForbidden)
	}

	return s.courses.Delete(ctx, id)
}

// IsTeaching reports whether the user lectures the given course.
func (s *courseService) IsTeaching(ctx context.Context, userID, courseID uint) (bool, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return course.LecturerID == userID, nil
}
