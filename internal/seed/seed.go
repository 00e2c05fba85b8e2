package seed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"brackets/internal/model"
	"brackets/internal/repository"
)

const (
	adminUsername = "admin"
	adminPassword = "password123"
)

// Repos bundles the repositories the seeder writes through, so it works
// against either storage driver.
type Repos struct {
	Users     repository.UserRepository
	Banks     repository.QuestionBankRepository
	Questions repository.QuestionRepository
	Subjects  repository.SubjectRepository
	Exams     repository.ExamRepository
}

// Demo creates the admin user and a published demo bank with sample
// questions. Idempotent: it does nothing when the admin user already exists.
func Demo(ctx context.Context, repos Repos) error {
	if _, err := repos.Users.FindByUsername(ctx, adminUsername); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &model.User{
		Username:     adminUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Organization: "Brackets Admin",
	}
	if err := repos.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	subject := &model.Subject{Name: "General Astronomy"}
	if err := repos.Subjects.Create(ctx, subject); err != nil {
		return fmt.Errorf("create demo subject: %w", err)
	}
	exam := &model.Exam{Name: "Astronomy Basics", Year: "2023"}
	if err := repos.Exams.Create(ctx, exam); err != nil {
		return fmt.Errorf("create demo exam: %w", err)
	}

	bank := &model.QuestionBank{
		Title:        "Solar System Basics",
		CreatorID:    admin.ID,
		Organization: "Brackets Admin",
		Introduction: "A comprehensive set of questions about the fundamental properties of our solar system.",
		Status:       model.BankStatusPublished,
	}
	if err := repos.Banks.Create(ctx, bank); err != nil {
		return fmt.Errorf("create demo bank: %w", err)
	}

	questions := []model.Question{
		{
			QuestionBankID: bank.ID,
			ExamID:         exam.ID,
			SubjectID:      subject.ID,
			QuestionText:   "Which planet is known as the 'Red Planet'?",
			HasOptions:     true,
			Options:        []string{"Earth", "Venus", "Mars", "Jupiter"},
			CorrectAnswer:  "Mars",
			Description:    "Mars is often called the 'Red Planet' because of the reddish appearance given to its surface by iron oxide (rust).",
			SerialNumber:   1,
		},
		{
			QuestionBankID: bank.ID,
			ExamID:         exam.ID,
			SubjectID:      subject.ID,
			QuestionText:   "What is the largest planet in our solar system?",
			HasOptions:     true,
			Options:        []string{"Saturn", "Jupiter", "Neptune", "Uranus"},
			CorrectAnswer:  "Jupiter",
			Description:    "Jupiter is the largest planet in our solar system, with a diameter approximately 11 times that of Earth.",
			SerialNumber:   2,
		},
	}
	for i := range questions {
		if err := repos.Questions.Create(ctx, &questions[i]); err != nil {
			return fmt.Errorf("create demo question %d: %w", i+1, err)
		}
	}

	return nil
}
