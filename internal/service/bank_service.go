package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"brackets/internal/auth"
	"brackets/internal/cache"
	apperrors "brackets/internal/errors"
	"brackets/internal/model"
	"brackets/internal/repository"
)

const (
	publishedBanksCacheKey = "question_banks:published"
	publishedBanksCacheTTL = 5 * time.Minute
	bankCountCacheTTL      = 5 * time.Minute
)

func bankCountCacheKey(id uint) string {
	return fmt.Sprintf("question_bank:%d:question_count", id)
}

// CreateBankInput carries the fields accepted when creating a bank.
type CreateBankInput struct {
	Title        string
	Organization string
	Introduction string
}

// UpdateBankInput is a partial patch; nil fields are left unchanged.
// Status is never patched directly, only through the transition methods.
type UpdateBankInput struct {
	Title        *string
	Organization *string
	Introduction *string
}

// BankService handles question bank operations, including the publication
// status workflow. Read methods take a nil principal for unauthenticated
// callers; hidden banks surface as not-found so existence does not leak.
type BankService interface {
	Create(ctx context.Context, p auth.Principal, in CreateBankInput) (*model.QuestionBank, error)
	List(ctx context.Context, p *auth.Principal, creatorID uint) ([]model.QuestionBank, error)
	ListPublished(ctx context.Context) ([]model.QuestionBank, error)
	Get(ctx context.Context, p *auth.Principal, id uint) (*model.QuestionBank, error)
	Update(ctx context.Context, p auth.Principal, id uint, in UpdateBankInput) (*model.QuestionBank, error)
	Submit(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error)
	Approve(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error)
	Reject(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error)
	Unpublish(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error)
	Delete(ctx context.Context, p auth.Principal, id uint) error
	QuestionCounts(ctx context.Context, p *auth.Principal, ids []uint) (map[uint]int64, error)
}

type bankService struct {
	bankRepo     repository.QuestionBankRepository
	questionRepo repository.QuestionRepository
	cache        *cache.Client
}

// NewBankService creates a new question bank service.
func NewBankService(bankRepo repository.QuestionBankRepository, questionRepo repository.QuestionRepository, cache *cache.Client) BankService {
	return &bankService{
		bankRepo:     bankRepo,
		questionRepo: questionRepo,
		cache:        cache,
	}
}

// Create creates a bank in draft status owned by the principal. The creator
// reference always comes from the principal, never from the payload.
func (s *bankService) Create(ctx context.Context, p auth.Principal, in CreateBankInput) (*model.QuestionBank, error) {
	bank := &model.QuestionBank{
		Title:        in.Title,
		CreatorID:    p.UserID,
		Organization: in.Organization,
		Introduction: in.Introduction,
		Status:       model.BankStatusDraft,
	}
	if err := s.bankRepo.Create(ctx, bank); err != nil {
		return nil, fmt.Errorf("create question bank: %w", err)
	}
	return bank, nil
}

// List returns the banks visible to the principal, optionally filtered by
// creator. Unauthenticated callers see published banks only; a non-admin may
// filter only by their own creator id.
func (s *bankService) List(ctx context.Context, p *auth.Principal, creatorID uint) ([]model.QuestionBank, error) {
	if p == nil {
		return s.ListPublished(ctx)
	}
	if creatorID != 0 {
		if !p.IsAdmin() && creatorID != p.UserID {
			return nil, apperrors.ErrForbidden
		}
		return s.bankRepo.ListByCreator(ctx, creatorID)
	}
	if p.IsAdmin() {
		return s.bankRepo.List(ctx)
	}
	return s.bankRepo.ListVisibleTo(ctx, p.UserID)
}

// ListPublished returns all published banks, cache-aside.
func (s *bankService) ListPublished(ctx context.Context) ([]model.QuestionBank, error) {
	if data, _ := s.cache.Get(ctx, publishedBanksCacheKey); data != nil {
		var cached []model.QuestionBank
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	banks, err := s.bankRepo.ListByStatus(ctx, model.BankStatusPublished)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(banks); err == nil {
		_ = s.cache.Set(ctx, publishedBanksCacheKey, payload, publishedBanksCacheTTL)
	}

	return banks, nil
}

// Get returns a bank if it is visible to the principal, not-found otherwise.
func (s *bankService) Get(ctx context.Context, p *auth.Principal, id uint) (*model.QuestionBank, error) {
	bank, err := s.loadBank(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(bank, p) {
		return nil, apperrors.ErrBankNotFound
	}
	return bank, nil
}

// Update applies a partial patch to a bank owned by the principal.
func (s *bankService) Update(ctx context.Context, p auth.Principal, id uint, in UpdateBankInput) (*model.QuestionBank, error) {
	bank, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		bank.Title = *in.Title
	}
	if in.Organization != nil {
		bank.Organization = *in.Organization
	}
	if in.Introduction != nil {
		bank.Introduction = *in.Introduction
	}

	if err := s.bankRepo.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("update question bank: %w", err)
	}
	s.invalidate(ctx, id)
	return bank, nil
}

// Submit moves a draft bank into the approval queue. Owner action.
func (s *bankService) Submit(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error) {
	return s.transition(ctx, p, id, model.BankStatusDraft, model.BankStatusPending, false)
}

// Approve publishes a pending bank. Admin only; the owning creator gets a
// forbidden error.
func (s *bankService) Approve(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error) {
	return s.transition(ctx, p, id, model.BankStatusPending, model.BankStatusPublished, true)
}

// Reject returns a pending bank to draft. Admin rejection or the owner
// cancelling their own approval request.
func (s *bankService) Reject(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error) {
	return s.transition(ctx, p, id, model.BankStatusPending, model.BankStatusDraft, false)
}

// Unpublish takes a published bank back to draft. Owner or admin.
func (s *bankService) Unpublish(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error) {
	return s.transition(ctx, p, id, model.BankStatusPublished, model.BankStatusDraft, false)
}

// transition applies one edge of the status state machine. The ownership
// check runs before the state check so an unauthorized caller cannot probe
// the bank's current status.
func (s *bankService) transition(ctx context.Context, p auth.Principal, id uint, from, to model.BankStatus, adminOnly bool) (*model.QuestionBank, error) {
	bank, err := s.loadBank(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(bank.CreatorID) {
		return nil, apperrors.ErrForbidden
	}
	if adminOnly && !p.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if bank.Status != from {
		return nil, apperrors.ErrInvalidTransition
	}

	bank.Status = to
	if err := s.bankRepo.Update(ctx, bank); err != nil {
		return nil, fmt.Errorf("update question bank status: %w", err)
	}
	s.invalidate(ctx, id)
	return bank, nil
}

// Delete removes a bank and all its questions.
func (s *bankService) Delete(ctx context.Context, p auth.Principal, id uint) error {
	if _, err := s.loadOwned(ctx, p, id); err != nil {
		return err
	}
	if err := s.bankRepo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBankNotFound
		}
		return fmt.Errorf("delete question bank: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// QuestionCounts returns per-bank question counts for a batch of bank ids,
// replacing the per-bank fan-out the frontend would otherwise issue. Banks
// not visible to the principal report zero, indistinguishable from missing
// ones, so the response discloses nothing about hidden banks.
func (s *bankService) QuestionCounts(ctx context.Context, p *auth.Principal, ids []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ids))
	var visible []uint
	for _, id := range ids {
		bank, err := s.bankRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				counts[id] = 0
				continue
			}
			return nil, err
		}
		if !visibleTo(bank, p) {
			counts[id] = 0
			continue
		}
		visible = append(visible, id)
	}

	var misses []uint
	for _, id := range visible {
		data, _ := s.cache.Get(ctx, bankCountCacheKey(id))
		if data == nil {
			misses = append(misses, id)
			continue
		}
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			misses = append(misses, id)
			continue
		}
		counts[id] = n
	}

	if len(misses) > 0 {
		fetched, err := s.questionRepo.CountByBanks(ctx, misses)
		if err != nil {
			return nil, err
		}
		for id, n := range fetched {
			counts[id] = n
			if payload, err := json.Marshal(n); err == nil {
				_ = s.cache.Set(ctx, bankCountCacheKey(id), payload, bankCountCacheTTL)
			}
		}
	}

	return counts, nil
}

func (s *bankService) loadBank(ctx context.Context, id uint) (*model.QuestionBank, error) {
	bank, err := s.bankRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBankNotFound
		}
		return nil, err
	}
	return bank, nil
}

// loadOwned loads a bank and enforces the owner-or-admin rule.
func (s *bankService) loadOwned(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error) {
	bank, err := s.loadBank(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanModify(bank.CreatorID) {
		return nil, apperrors.ErrForbidden
	}
	return bank, nil
}

func (s *bankService) invalidate(ctx context.Context, id uint) {
	_ = s.cache.Delete(ctx, publishedBanksCacheKey, bankCountCacheKey(id))
}

// visibleTo implements the read visibility rule for an optional principal.
func visibleTo(bank *model.QuestionBank, p *auth.Principal) bool {
	if p == nil {
		return bank.Status == model.BankStatusPublished
	}
	return bank.Visible(p.UserID, p.IsAdmin())
}
