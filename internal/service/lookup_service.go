package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"brackets/internal/model"
	"brackets/internal/repository"
)

// LookupService handles the subject and exam reference entities. Creation is
// get-or-create with case-insensitive dedup; there is no deletion path.
type LookupService interface {
	ListSubjects(ctx context.Context) ([]model.Subject, error)
	GetOrCreateSubject(ctx context.Context, name string) (subject *model.Subject, created bool, err error)
	ListExams(ctx context.Context) ([]model.Exam, error)
	GetOrCreateExam(ctx context.Context, name, year string) (exam *model.Exam, created bool, err error)
}

type lookupService struct {
	subjectRepo repository.SubjectRepository
	examRepo    repository.ExamRepository
}

// NewLookupService creates a new lookup service.
func NewLookupService(subjectRepo repository.SubjectRepository, examRepo repository.ExamRepository) LookupService {
	return &lookupService{
		subjectRepo: subjectRepo,
		examRepo:    examRepo,
	}
}

func (s *lookupService) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	return s.subjectRepo.List(ctx)
}

// GetOrCreateSubject returns the existing subject matching name
// case-insensitively, creating it when absent.
func (s *lookupService) GetOrCreateSubject(ctx context.Context, name string) (*model.Subject, bool, error) {
	existing, err := s.subjectRepo.FindByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	subject := &model.Subject{Name: name}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		// Lost a creation race; return the winner.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.subjectRepo.FindByName(ctx, name)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create subject: %w", err)
	}
	return subject, true, nil
}

func (s *lookupService) ListExams(ctx context.Context) ([]model.Exam, error) {
	return s.examRepo.List(ctx)
}

// GetOrCreateExam returns the existing exam matching (name, year) with the
// name compared case-insensitively, creating it when absent.
func (s *lookupService) GetOrCreateExam(ctx context.Context, name, year string) (*model.Exam, bool, error) {
	existing, err := s.examRepo.FindByNameYear(ctx, name, year)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	exam := &model.Exam{Name: name, Year: year}
	if err := s.examRepo.Create(ctx, exam); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, findErr := s.examRepo.FindByNameYear(ctx, name, year)
			if findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create exam: %w", err)
	}
	return exam, true, nil
}
