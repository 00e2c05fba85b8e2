package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"brackets/internal/auth"
	apperrors "brackets/internal/errors"
	"brackets/internal/model"
)

// MockQuestionBankRepository is a mock implementation of QuestionBankRepository.
type MockQuestionBankRepository struct {
	mock.Mock
}

func (m *MockQuestionBankRepository) Create(ctx context.Context, bank *model.QuestionBank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockQuestionBankRepository) FindByID(ctx context.Context, id uint) (*model.QuestionBank, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuestionBank), args.Error(1)
}

func (m *MockQuestionBankRepository) List(ctx context.Context) ([]model.QuestionBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuestionBank), args.Error(1)
}

func (m *MockQuestionBankRepository) ListByCreator(ctx context.Context, creatorID uint) ([]model.QuestionBank, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuestionBank), args.Error(1)
}

func (m *MockQuestionBankRepository) ListByStatus(ctx context.Context, status model.BankStatus) ([]model.QuestionBank, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuestionBank), args.Error(1)
}

func (m *MockQuestionBankRepository) ListVisibleTo(ctx context.Context, viewerID uint) ([]model.QuestionBank, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuestionBank), args.Error(1)
}

func (m *MockQuestionBankRepository) Update(ctx context.Context, bank *model.QuestionBank) error {
	args := m.Called(ctx, bank)
	return args.Error(0)
}

func (m *MockQuestionBankRepository) DeleteCascade(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQuestionRepository is a mock implementation of QuestionRepository.
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *model.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByBank(ctx context.Context, bankID uint) ([]model.Question, error) {
	args := m.Called(ctx, bankID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Question), args.Error(1)
}

func (m *MockQuestionRepository) MaxSerial(ctx context.Context, bankID uint) (int, error) {
	args := m.Called(ctx, bankID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) CountByBanks(ctx context.Context, bankIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, bankIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *model.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	creatorPrincipal = auth.Principal{UserID: 1, Username: "prof_lee", Role: model.RoleCreator}
	otherPrincipal   = auth.Principal{UserID: 2, Username: "intruder", Role: model.RoleCreator}
	adminPrincipal   = auth.Principal{UserID: 3, Username: "admin", Role: model.RoleAdmin}
)

func newBankService(bankRepo *MockQuestionBankRepository, questionRepo *MockQuestionRepository) BankService {
	return NewBankService(bankRepo, questionRepo, nil)
}

func TestBankService_Create(t *testing.T) {
	mockBanks := new(MockQuestionBankRepository)
	mockBanks.On("Create", mock.Anything, mock.AnythingOfType("*model.QuestionBank")).Return(nil)

	service := newBankService(mockBanks, new(MockQuestionRepository))
	bank, err := service.Create(context.Background(), creatorPrincipal, CreateBankInput{
		Title:        "GATE-AR 2023",
		Organization: "Metro University",
		Introduction: "Architecture aptitude practice set",
	})

	assert.NoError(t, err)
	assert.Equal(t, model.BankStatusDraft, bank.Status)
	assert.Equal(t, creatorPrincipal.UserID, bank.CreatorID)
	assert.Equal(t, "GATE-AR 2023", bank.Title)
	mockBanks.AssertExpectations(t)
}

func TestBankService_Get_Visibility(t *testing.T) {
	draft := &model.QuestionBank{ID: 5, Title: "Drafts", CreatorID: 1, Status: model.BankStatusDraft}
	published := &model.QuestionBank{ID: 6, Title: "Published", CreatorID: 1, Status: model.BankStatusPublished}

	tests := []struct {
		name          string
		bank          *model.QuestionBank
		principal     *auth.Principal
		expectedError error
	}{
		{"anonymous sees published", published, nil, nil},
		{"anonymous cannot see draft", draft, nil, apperrors.ErrBankNotFound},
		{"owner sees own draft", draft, &creatorPrincipal, nil},
		{"other creator cannot see draft", draft, &otherPrincipal, apperrors.ErrBankNotFound},
		{"admin sees draft", draft, &adminPrincipal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBanks := new(MockQuestionBankRepository)
			mockBanks.On("FindByID", mock.Anything, tt.bank.ID).Return(tt.bank, nil)

			service := newBankService(mockBanks, new(MockQuestionRepository))
			bank, err := service.Get(context.Background(), tt.principal, tt.bank.ID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, bank)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.bank.ID, bank.ID)
			}
		})
	}
}

func TestBankService_Get_Missing(t *testing.T) {
	mockBanks := new(MockQuestionBankRepository)
	mockBanks.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	service := newBankService(mockBanks, new(MockQuestionRepository))
	_, err := service.Get(context.Background(), nil, 99)

	assert.ErrorIs(t, err, apperrors.ErrBankNotFound)
}

func TestBankService_List(t *testing.T) {
	t.Run("anonymous gets published only", func(t *testing.T) {
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("ListByStatus", mock.Anything, model.BankStatusPublished).
			Return([]model.QuestionBank{{ID: 1, Status: model.BankStatusPublished}}, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		banks, err := service.List(context.Background(), nil, 0)

		assert.NoError(t, err)
		assert.Len(t, banks, 1)
		mockBanks.AssertExpectations(t)
	})

	t.Run("creator gets published plus own", func(t *testing.T) {
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("ListVisibleTo", mock.Anything, creatorPrincipal.UserID).
			Return([]model.QuestionBank{{ID: 1}, {ID: 2}}, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		banks, err := service.List(context.Background(), &creatorPrincipal, 0)

		assert.NoError(t, err)
		assert.Len(t, banks, 2)
		mockBanks.AssertExpectations(t)
	})

	t.Run("admin gets everything", func(t *testing.T) {
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("List", mock.Anything).
			Return([]model.QuestionBank{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		banks, err := service.List(context.Background(), &adminPrincipal, 0)

		assert.NoError(t, err)
		assert.Len(t, banks, 3)
		mockBanks.AssertExpectations(t)
	})

	t.Run("creator may filter by own id", func(t *testing.T) {
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("ListByCreator", mock.Anything, creatorPrincipal.UserID).
			Return([]model.QuestionBank{{ID: 1}}, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		banks, err := service.List(context.Background(), &creatorPrincipal, creatorPrincipal.UserID)

		assert.NoError(t, err)
		assert.Len(t, banks, 1)
		mockBanks.AssertExpectations(t)
	})

	t.Run("creator cannot filter by another creator", func(t *testing.T) {
		mockBanks := new(MockQuestionBankRepository)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		banks, err := service.List(context.Background(), &creatorPrincipal, otherPrincipal.UserID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, banks)
		mockBanks.AssertNotCalled(t, "ListByCreator", mock.Anything, mock.Anything)
	})
}

func TestBankService_Update(t *testing.T) {
	newTitle := "GATE-AR 2024"

	t.Run("owner patches title", func(t *testing.T) {
		bank := &model.QuestionBank{ID: 5, Title: "GATE-AR 2023", CreatorID: 1, Status: model.BankStatusDraft}
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)
		mockBanks.On("Update", mock.Anything, mock.AnythingOfType("*model.QuestionBank")).Return(nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		updated, err := service.Update(context.Background(), creatorPrincipal, 5, UpdateBankInput{Title: &newTitle})

		assert.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
		mockBanks.AssertExpectations(t)
	})

	t.Run("non-owner is rejected before any write", func(t *testing.T) {
		bank := &model.QuestionBank{ID: 5, Title: "GATE-AR 2023", CreatorID: 1, Status: model.BankStatusDraft}
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		_, err := service.Update(context.Background(), otherPrincipal, 5, UpdateBankInput{Title: &newTitle})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockBanks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestBankService_StatusWorkflow(t *testing.T) {
	tests := []struct {
		name           string
		from           model.BankStatus
		principal      auth.Principal
		transition     string
		expectedStatus model.BankStatus
		expectedError  error
	}{
		{"owner submits draft", model.BankStatusDraft, creatorPrincipal, "submit", model.BankStatusPending, nil},
		{"submit requires draft", model.BankStatusPublished, creatorPrincipal, "submit", "", apperrors.ErrInvalidTransition},
		{"admin approves pending", model.BankStatusPending, adminPrincipal, "approve", model.BankStatusPublished, nil},
		{"owner cannot approve own bank", model.BankStatusPending, creatorPrincipal, "approve", "", apperrors.ErrForbidden},
		{"approve requires pending", model.BankStatusDraft, adminPrincipal, "approve", "", apperrors.ErrInvalidTransition},
		{"admin rejects pending", model.BankStatusPending, adminPrincipal, "reject", model.BankStatusDraft, nil},
		{"owner withdraws pending", model.BankStatusPending, creatorPrincipal, "reject", model.BankStatusDraft, nil},
		{"owner unpublishes", model.BankStatusPublished, creatorPrincipal, "unpublish", model.BankStatusDraft, nil},
		{"unpublish requires published", model.BankStatusDraft, creatorPrincipal, "unpublish", "", apperrors.ErrInvalidTransition},
		{"stranger gets forbidden", model.BankStatusDraft, otherPrincipal, "submit", "", apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &model.QuestionBank{ID: 5, CreatorID: creatorPrincipal.UserID, Status: tt.from}
			mockBanks := new(MockQuestionBankRepository)
			mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)
			if tt.expectedError == nil {
				mockBanks.On("Update", mock.Anything, mock.AnythingOfType("*model.QuestionBank")).Return(nil)
			}

			service := newBankService(mockBanks, new(MockQuestionRepository))

			var result *model.QuestionBank
			var err error
			switch tt.transition {
			case "submit":
				result, err = service.Submit(context.Background(), tt.principal, 5)
			case "approve":
				result, err = service.Approve(context.Background(), tt.principal, 5)
			case "reject":
				result, err = service.Reject(context.Background(), tt.principal, 5)
			case "unpublish":
				result, err = service.Unpublish(context.Background(), tt.principal, 5)
			}

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				mockBanks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedStatus, result.Status)
			}
			mockBanks.AssertExpectations(t)
		})
	}
}

func TestBankService_StatusCheckDoesNotLeakToStrangers(t *testing.T) {
	// A non-owner probing a pending bank must see forbidden, not the
	// state error an owner would see for a wrong-state transition.
	bank := &model.QuestionBank{ID: 5, CreatorID: creatorPrincipal.UserID, Status: model.BankStatusPublished}
	mockBanks := new(MockQuestionBankRepository)
	mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)

	service := newBankService(mockBanks, new(MockQuestionRepository))
	_, err := service.Submit(context.Background(), otherPrincipal, 5)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestBankService_Delete(t *testing.T) {
	t.Run("owner deletes", func(t *testing.T) {
		bank := &model.QuestionBank{ID: 5, CreatorID: 1, Status: model.BankStatusDraft}
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)
		mockBanks.On("DeleteCascade", mock.Anything, uint(5)).Return(nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		assert.NoError(t, service.Delete(context.Background(), creatorPrincipal, 5))
		mockBanks.AssertExpectations(t)
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		bank := &model.QuestionBank{ID: 5, CreatorID: 1, Status: model.BankStatusDraft}
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("FindByID", mock.Anything, uint(5)).Return(bank, nil)

		service := newBankService(mockBanks, new(MockQuestionRepository))
		err := service.Delete(context.Background(), otherPrincipal, 5)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		mockBanks.AssertNotCalled(t, "DeleteCascade", mock.Anything, mock.Anything)
	})
}

func TestBankService_QuestionCounts(t *testing.T) {
	published := &model.QuestionBank{ID: 1, CreatorID: 1, Status: model.BankStatusPublished}
	draft := &model.QuestionBank{ID: 2, CreatorID: 1, Status: model.BankStatusDraft}

	setup := func() (*MockQuestionBankRepository, *MockQuestionRepository) {
		mockBanks := new(MockQuestionBankRepository)
		mockBanks.On("FindByID", mock.Anything, uint(1)).Return(published, nil)
		mockBanks.On("FindByID", mock.Anything, uint(2)).Return(draft, nil)
		mockBanks.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
		return mockBanks, new(MockQuestionRepository)
	}

	t.Run("anonymous caller gets published counts only", func(t *testing.T) {
		mockBanks, mockQuestions := setup()
		mockQuestions.On("CountByBanks", mock.Anything, []uint{1}).
			Return(map[uint]int64{1: 10}, nil)

		service := newBankService(mockBanks, mockQuestions)
		counts, err := service.QuestionCounts(context.Background(), nil, []uint{1, 2, 42})

		assert.NoError(t, err)
		assert.Equal(t, map[uint]int64{1: 10, 2: 0, 42: 0}, counts)
		mockQuestions.AssertExpectations(t)
	})

	t.Run("hidden bank count is indistinguishable from a missing bank", func(t *testing.T) {
		mockBanks, mockQuestions := setup()

		service := newBankService(mockBanks, mockQuestions)
		counts, err := service.QuestionCounts(context.Background(), &otherPrincipal, []uint{2, 42})

		assert.NoError(t, err)
		assert.Equal(t, counts[42], counts[2])
		assert.Zero(t, counts[2])
		mockQuestions.AssertNotCalled(t, "CountByBanks", mock.Anything, mock.Anything)
	})

	t.Run("owner sees own draft count", func(t *testing.T) {
		mockBanks, mockQuestions := setup()
		mockQuestions.On("CountByBanks", mock.Anything, []uint{1, 2}).
			Return(map[uint]int64{1: 10, 2: 1}, nil)

		service := newBankService(mockBanks, mockQuestions)
		counts, err := service.QuestionCounts(context.Background(), &creatorPrincipal, []uint{1, 2, 42})

		assert.NoError(t, err)
		assert.Equal(t, map[uint]int64{1: 10, 2: 1, 42: 0}, counts)
	})

	t.Run("admin sees every count", func(t *testing.T) {
		mockBanks, mockQuestions := setup()
		mockQuestions.On("CountByBanks", mock.Anything, []uint{1, 2}).
			Return(map[uint]int64{1: 10, 2: 1}, nil)

		service := newBankService(mockBanks, mockQuestions)
		counts, err := service.QuestionCounts(context.Background(), &adminPrincipal, []uint{1, 2})

		assert.NoError(t, err)
		assert.Equal(t, map[uint]int64{1: 10, 2: 1}, counts)
	})
}
