package repository

import (
	"context"

	"gorm.io/gorm"

	"brackets/internal/model"
)

// QuestionRepository defines question persistence operations.
type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	// ListByBank returns the bank's questions ordered by serial number ascending.
	ListByBank(ctx context.Context, bankID uint) ([]model.Question, error)
	// MaxSerial returns the highest serial number in the bank, 0 when empty.
	MaxSerial(ctx context.Context, bankID uint) (int, error)
	// CountByBanks returns question counts keyed by bank id for a batch of banks.
	CountByBanks(ctx context.Context, bankIDs []uint) (map[uint]int64, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) ListByBank(ctx context.Context, bankID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.WithContext(ctx).Where("question_bank_id = ?", bankID).
		Order("serial_number ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) MaxSerial(ctx context.Context, bankID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("question_bank_id = ?", bankID).
		Select("COALESCE(MAX(serial_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *questionRepository) CountByBanks(ctx context.Context, bankIDs []uint) (map[uint]int64, error) {
	type row struct {
		QuestionBankID uint
		Count          int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&model.Question{}).
		Select("question_bank_id, COUNT(*) AS count").
		Where("question_bank_id IN ?", bankIDs).
		Group("question_bank_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(bankIDs))
	for _, id := range bankIDs {
		counts[id] = 0
	}
	for _, r := range rows {
		counts[r.QuestionBankID] = r.Count
	}
	return counts, nil
}

func (r *questionRepository) Update(ctx context.Context, question *model.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
