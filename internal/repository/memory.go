package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"brackets/internal/model"
)

// MemoryStore is a process-lifetime map-backed store satisfying the same
// repository contracts as the GORM implementations. It backs the "memory"
// storage driver and the test suite. Missing records surface as
// gorm.ErrRecordNotFound so services handle both drivers identically.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[uint]model.User
	banks     map[uint]model.QuestionBank
	questions map[uint]model.Question
	subjects  map[uint]model.Subject
	exams     map[uint]model.Exam

	nextUserID     uint
	nextBankID     uint
	nextQuestionID uint
	nextSubjectID  uint
	nextExamID     uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[uint]model.User),
		banks:          make(map[uint]model.QuestionBank),
		questions:      make(map[uint]model.Question),
		subjects:       make(map[uint]model.Subject),
		exams:          make(map[uint]model.Exam),
		nextUserID:     1,
		nextBankID:     1,
		nextQuestionID: 1,
		nextSubjectID:  1,
		nextExamID:     1,
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() UserRepository { return &memoryUserRepository{s} }

// QuestionBanks returns the question bank repository view of the store.
func (s *MemoryStore) QuestionBanks() QuestionBankRepository {
	return &memoryQuestionBankRepository{s}
}

// Questions returns the question repository view of the store.
func (s *MemoryStore) Questions() QuestionRepository { return &memoryQuestionRepository{s} }

// Subjects returns the subject repository view of the store.
func (s *MemoryStore) Subjects() SubjectRepository { return &memorySubjectRepository{s} }

// Exams returns the exam repository view of the store.
func (s *MemoryStore) Exams() ExamRepository { return &memoryExamRepository{s} }

type memoryUserRepository struct{ store *MemoryStore }

func (r *memoryUserRepository) Create(ctx context.Context, user *model.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memoryUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepository) List(ctx context.Context) ([]model.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memoryQuestionBankRepository struct{ store *MemoryStore }

func (r *memoryQuestionBankRepository) Create(ctx context.Context, bank *model.QuestionBank) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	bank.ID = s.nextBankID
	s.nextBankID++
	now := time.Now()
	bank.CreatedAt = now
	bank.UpdatedAt = now
	if bank.Status == "" {
		bank.Status = model.BankStatusDraft
	}
	s.banks[bank.ID] = *bank
	return nil
}

func (r *memoryQuestionBankRepository) FindByID(ctx context.Context, id uint) (*model.QuestionBank, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r *memoryQuestionBankRepository) List(ctx context.Context) ([]model.QuestionBank, error) {
	return r.collect(func(model.QuestionBank) bool { return true }), nil
}

func (r *memoryQuestionBankRepository) ListByCreator(ctx context.Context, creatorID uint) ([]model.QuestionBank, error) {
	return r.collect(func(b model.QuestionBank) bool { return b.CreatorID == creatorID }), nil
}

func (r *memoryQuestionBankRepository) ListByStatus(ctx context.Context, status model.BankStatus) ([]model.QuestionBank, error) {
	return r.collect(func(b model.QuestionBank) bool { return b.Status == status }), nil
}

func (r *memoryQuestionBankRepository) ListVisibleTo(ctx context.Context, viewerID uint) ([]model.QuestionBank, error) {
	return r.collect(func(b model.QuestionBank) bool {
		return b.Status == model.BankStatusPublished || b.CreatorID == viewerID
	}), nil
}

// collect filters banks under the read lock, newest update first.
func (r *memoryQuestionBankRepository) collect(keep func(model.QuestionBank) bool) []model.QuestionBank {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	banks := make([]model.QuestionBank, 0)
	for _, b := range s.banks {
		if keep(b) {
			banks = append(banks, b)
		}
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].UpdatedAt.After(banks[j].UpdatedAt) })
	return banks
}

func (r *memoryQuestionBankRepository) Update(ctx context.Context, bank *model.QuestionBank) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[bank.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	bank.UpdatedAt = time.Now()
	s.banks[bank.ID] = *bank
	return nil
}

func (r *memoryQuestionBankRepository) DeleteCascade(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for qid, q := range s.questions {
		if q.QuestionBankID == id {
			delete(s.questions, qid)
		}
	}
	delete(s.banks, id)
	return nil
}

type memoryQuestionRepository struct{ store *MemoryStore }

func (r *memoryQuestionRepository) Create(ctx context.Context, question *model.Question) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	question.ID = s.nextQuestionID
	s.nextQuestionID++
	question.CreatedAt = time.Now()
	s.questions[question.ID] = *question
	return nil
}

func (r *memoryQuestionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (r *memoryQuestionRepository) ListByBank(ctx context.Context, bankID uint) ([]model.Question, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]model.Question, 0)
	for _, q := range s.questions {
		if q.QuestionBankID == bankID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].SerialNumber < questions[j].SerialNumber
	})
	return questions, nil
}

func (r *memoryQuestionRepository) MaxSerial(ctx context.Context, bankID uint) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, q := range s.questions {
		if q.QuestionBankID == bankID && q.SerialNumber > max {
			max = q.SerialNumber
		}
	}
	return max, nil
}

func (r *memoryQuestionRepository) CountByBanks(ctx context.Context, bankIDs []uint) (map[uint]int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[uint]int64, len(bankIDs))
	for _, id := range bankIDs {
		counts[id] = 0
	}
	for _, q := range s.questions {
		if _, ok := counts[q.QuestionBankID]; ok {
			counts[q.QuestionBankID]++
		}
	}
	return counts, nil
}

func (r *memoryQuestionRepository) Update(ctx context.Context, question *model.Question) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.questions[question.ID] = *question
	return nil
}

func (r *memoryQuestionRepository) Delete(ctx context.Context, id uint) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.questions, id)
	return nil
}

type memorySubjectRepository struct{ store *MemoryStore }

func (r *memorySubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subjects {
		if strings.EqualFold(existing.Name, subject.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	subject.ID = s.nextSubjectID
	s.nextSubjectID++
	subject.CreatedAt = time.Now()
	s.subjects[subject.ID] = *subject
	return nil
}

func (r *memorySubjectRepository) FindByID(ctx context.Context, id uint) (*model.Subject, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	subj, ok := s.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &subj, nil
}

func (r *memorySubjectRepository) FindByName(ctx context.Context, name string) (*model.Subject, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, subj := range s.subjects {
		if strings.EqualFold(subj.Name, name) {
			found := subj
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memorySubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	subjects := make([]model.Subject, 0, len(s.subjects))
	for _, subj := range s.subjects {
		subjects = append(subjects, subj)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

type memoryExamRepository struct{ store *MemoryStore }

func (r *memoryExamRepository) Create(ctx context.Context, exam *model.Exam) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.exams {
		if strings.EqualFold(existing.Name, exam.Name) && existing.Year == exam.Year {
			return gorm.ErrDuplicatedKey
		}
	}
	exam.ID = s.nextExamID
	s.nextExamID++
	exam.CreatedAt = time.Now()
	s.exams[exam.ID] = *exam
	return nil
}

func (r *memoryExamRepository) FindByID(ctx context.Context, id uint) (*model.Exam, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	exam, ok := s.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &exam, nil
}

func (r *memoryExamRepository) FindByNameYear(ctx context.Context, name, year string) (*model.Exam, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, exam := range s.exams {
		if strings.EqualFold(exam.Name, name) && exam.Year == year {
			found := exam
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	exams := make([]model.Exam, 0, len(s.exams))
	for _, exam := range s.exams {
		exams = append(exams, exam)
	}
	sort.Slice(exams, func(i, j int) bool {
		if exams[i].Name != exams[j].Name {
			return exams[i].Name < exams[j].Name
		}
		return exams[i].Year > exams[j].Year
	})
	return exams, nil
}
