package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/models"
)

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	StudentID *uint
	CourseID  *uint
	Status    *models.EnrollmentStatus
}

// EnrollmentRepository defines data operations for enrollments.
type EnrollmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error)
	CountActive(ctx context.Context, courseID uint) (int64, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs the enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Preload("Student").
		Preload("Course")
}

func (r *enrollmentRepository) GetByID(ctx context.Context, id uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).First(&enrollment, id).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, error) {
	query := r.baseQuery(ctx)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var enrollments []models.Enrollment
	if err := query.Order("enrolled_at DESC").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) CountActive(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Where("status = ?", models.EnrollmentStatusActive).
		Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *enrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return r.db.WithContext(ctx).Save(enrollment).Error
}
