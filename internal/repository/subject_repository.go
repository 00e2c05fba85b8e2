package repository

import (
	"context"

	"gorm.io/gorm"

	"brackets/internal/model"
)

// SubjectRepository defines subject lookup persistence operations.
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	FindByID(ctx context.Context, id uint) (*model.Subject, error)
	// FindByName matches case-insensitively.
	FindByName(ctx context.Context, name string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepository) FindByID(ctx context.Context, id uint) (*model.Subject, error) {
	var subject model.Subject
	if err := r.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	var subject model.Subject
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).
		First(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}
