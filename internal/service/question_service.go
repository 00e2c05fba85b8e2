package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brackets/internal/auth"
	"brackets/internal/cache"
	apperrors "brackets/internal/errors"
	"brackets/internal/model"
	"brackets/internal/repository"
)

// CreateQuestionInput carries the fields accepted when adding a question to
// a bank. The serial number is assigned server-side, never by the client.
type CreateQuestionInput struct {
	ExamID        uint
	SubjectID     uint
	QuestionText  string
	HasOptions    bool
	Options       []string
	CorrectAnswer string
	Description   string
}

// UpdateQuestionInput is a partial patch; nil fields are left unchanged.
type UpdateQuestionInput struct {
	ExamID        *uint
	SubjectID     *uint
	QuestionText  *string
	HasOptions    *bool
	Options       *[]string
	CorrectAnswer *string
	Description   *string
}

// QuestionService handles question operations. Visibility of a question
// always follows its parent bank.
type QuestionService interface {
	Create(ctx context.Context, p auth.Principal, bankID uint, in CreateQuestionInput) (*model.Question, error)
	ListByBank(ctx context.Context, p *auth.Principal, bankID uint) ([]model.Question, error)
	Get(ctx context.Context, p *auth.Principal, id uint) (*model.Question, error)
	Update(ctx context.Context, p auth.Principal, id uint, in UpdateQuestionInput) (*model.Question, error)
	Delete(ctx context.Context, p auth.Principal, id uint) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
	bankRepo     repository.QuestionBankRepository
	subjectRepo  repository.SubjectRepository
	examRepo     repository.ExamRepository
	cache        *cache.Client
}

// NewQuestionService creates a new question service.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	bankRepo repository.QuestionBankRepository,
	subjectRepo repository.SubjectRepository,
	examRepo repository.ExamRepository,
	cache *cache.Client,
) QuestionService {
	return &questionService{
		questionRepo: questionRepo,
		bankRepo:     bankRepo,
		subjectRepo:  subjectRepo,
		examRepo:     examRepo,
		cache:        cache,
	}
}

// Create adds a question to the bank with the next serial number.
func (s *questionService) Create(ctx context.Context, p auth.Principal, bankID uint, in CreateQuestionInput) (*model.Question, error) {
	bank, err := s.loadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(bank.CreatorID) {
		return nil, apperrors.ErrForbidden
	}

	if _, err := s.subjectRepo.FindByID(ctx, in.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, err
	}
	if _, err := s.examRepo.FindByID(ctx, in.ExamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, err
	}

	if err := checkAnswerConsistency(in.Options, in.CorrectAnswer); err != nil {
		return nil, err
	}

	maxSerial, err := s.questionRepo.MaxSerial(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("next serial number: %w", err)
	}

	question := &model.Question{
		QuestionBankID: bankID,
		ExamID:         in.ExamID,
		SubjectID:      in.SubjectID,
		QuestionText:   in.QuestionText,
		HasOptions:     in.HasOptions,
		Options:        in.Options,
		CorrectAnswer:  in.CorrectAnswer,
		Description:    in.Description,
		SerialNumber:   maxSerial + 1,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	_ = s.cache.Delete(ctx, bankCountCacheKey(bankID))
	return question, nil
}

// ListByBank returns the bank's questions ordered by serial number, provided
// the bank is visible to the principal.
func (s *questionService) ListByBank(ctx context.Context, p *auth.Principal, bankID uint) ([]model.Question, error) {
	bank, err := s.loadBank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(bank, p) {
		return nil, apperrors.ErrBankNotFound
	}
	return s.questionRepo.ListByBank(ctx, bankID)
}

// Get returns a question if its parent bank is visible to the principal.
func (s *questionService) Get(ctx context.Context, p *auth.Principal, id uint) (*model.Question, error) {
	question, bank, err := s.loadQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(bank, p) {
		return nil, apperrors.ErrQuestionNotFound
	}
	return question, nil
}

// Update applies a partial patch to a question in a bank the principal owns.
func (s *questionService) Update(ctx context.Context, p auth.Principal, id uint, in UpdateQuestionInput) (*model.Question, error) {
	question, bank, err := s.loadQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(bank.CreatorID) {
		return nil, apperrors.ErrForbidden
	}

	if in.SubjectID != nil {
		if _, err := s.subjectRepo.FindByID(ctx, *in.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrSubjectNotFound
			}
			return nil, err
		}
		question.SubjectID = *in.SubjectID
	}
	if in.ExamID != nil {
		if _, err := s.examRepo.FindByID(ctx, *in.ExamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrExamNotFound
			}
			return nil, err
		}
		question.ExamID = *in.ExamID
	}
	if in.QuestionText != nil {
		question.QuestionText = *in.QuestionText
	}
	if in.HasOptions != nil {
		question.HasOptions = *in.HasOptions
	}
	if in.Options != nil {
		question.Options = *in.Options
	}
	if in.CorrectAnswer != nil {
		question.CorrectAnswer = *in.CorrectAnswer
	}
	if in.Description != nil {
		question.Description = *in.Description
	}

	if err := checkAnswerConsistency(question.Options, question.CorrectAnswer); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

// Delete removes a question. Remaining serial numbers are not renumbered.
func (s *questionService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	question, bank, err := s.loadQuestion(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanModify(bank.CreatorID) {
		return apperrors.ErrForbidden
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	_ = s.cache.Delete(ctx, bankCountCacheKey(question.QuestionBankID))
	return nil
}

func (s *questionService) loadBank(ctx context.Context, id uint) (*model.QuestionBank, error) {
	bank, err := s.bankRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

func (s *questionService) loadQuestion(ctx context.Context, id uint) (*model.Question, *model.QuestionBank, error) {
	question, err := s.questionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrQuestionNotFound
		}
		return nil, nil, err
	}
	bank, err := s.loadBank(ctx, question.QuestionBankID)
	if err != nil {
		return nil, nil, err
	}
	return question, bank, nil
}

// checkAnswerConsistency enforces that the correct answer is one of the
// listed options whenever any are present, whether or not the question is
// flagged as multiple choice.
func checkAnswerConsistency(options []string, correctAnswer string) error {
	if len(options) == 0 {
		return nil
	}
	for _, opt := range options {
		if opt == correctAnswer {
			return nil
		}
	}
	return apperrors.NewValidationError(map[string]string{
		"correct_answer": "must match one of the listed options",
	})
}
