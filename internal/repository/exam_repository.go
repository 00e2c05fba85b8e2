package repository

import (
	"context"

	"gorm.io/gorm"

	"brackets/internal/model"
)

// ExamRepository defines exam lookup persistence operations.
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	FindByID(ctx context.Context, id uint) (*model.Exam, error)
	// FindByNameYear matches the name case-insensitively.
	FindByNameYear(ctx context.Context, name, year string) (*model.Exam, error)
	List(ctx context.Context) ([]model.Exam, error)
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByNameYear(ctx context.Context, name, year string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND year = ?", name, year).
		First(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) List(ctx context.Context) ([]model.Exam, error) {
	var exams []model.Exam
	if err := r.db.WithContext(ctx).Order("name ASC, year DESC").Find(&exams).Error; err != nil {
		return nil, err
	}
	return exams, nil
}
