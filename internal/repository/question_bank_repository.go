package repository

import (
	"context"

	"gorm.io/gorm"

	"brackets/internal/model"
)

// QuestionBankRepository defines question bank persistence operations.
// List results are ordered by updated_at descending, newest first.
type QuestionBankRepository interface {
	Create(ctx context.Context, bank *model.QuestionBank) error
	FindByID(ctx context.Context, id uint) (*model.QuestionBank, error)
	List(ctx context.Context) ([]model.QuestionBank, error)
	ListByCreator(ctx context.Context, creatorID uint) ([]model.QuestionBank, error)
	ListByStatus(ctx context.Context, status model.BankStatus) ([]model.QuestionBank, error)
	// ListVisibleTo returns published banks plus the viewer's own banks.
	ListVisibleTo(ctx context.Context, viewerID uint) ([]model.QuestionBank, error)
	Update(ctx context.Context, bank *model.QuestionBank) error
	// DeleteCascade deletes the bank's questions and then the bank inside
	// one transaction, so a failed cascade step leaves no partial state.
	DeleteCascade(ctx context.Context, id uint) error
}

type questionBankRepository struct {
	db *gorm.DB
}

// NewQuestionBankRepository creates a new question bank repository.
func NewQuestionBankRepository(db *gorm.DB) QuestionBankRepository {
	return &questionBankRepository{db: db}
}

func (r *questionBankRepository) Create(ctx context.Context, bank *model.QuestionBank) error {
	return r.db.WithContext(ctx).Create(bank).Error
}

func (r *questionBankRepository) FindByID(ctx context.Context, id uint) (*model.QuestionBank, error) {
	var bank model.QuestionBank
	if err := r.db.WithContext(ctx).First(&bank, id).Error; err != nil {
		return nil, err
	}
	return &bank, nil
}

func (r *questionBankRepository) List(ctx context.Context) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *questionBankRepository) ListByCreator(ctx context.Context, creatorID uint) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	if err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).
		Order("updated_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *questionBankRepository) ListByStatus(ctx context.Context, status model.BankStatus) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	if err := r.db.WithContext(ctx).Where("status = ?", status).
		Order("updated_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *questionBankRepository) ListVisibleTo(ctx context.Context, viewerID uint) ([]model.QuestionBank, error) {
	var banks []model.QuestionBank
	if err := r.db.WithContext(ctx).
		Where("status = ? OR creator_id = ?", model.BankStatusPublished, viewerID).
		Order("updated_at DESC").Find(&banks).Error; err != nil {
		return nil, err
	}
	return banks, nil
}

func (r *questionBankRepository) Update(ctx context.Context, bank *model.QuestionBank) error {
	return r.db.WithContext(ctx).Save(bank).Error
}

func (r *questionBankRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_bank_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.QuestionBank{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
