package main

import (
	"context"
	"log"

	"brackets/internal/config"
	"brackets/internal/db"
	"brackets/internal/model"
	"brackets/internal/repository"
	"brackets/internal/seed"
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Exam{},
		&model.QuestionBank{},
		&model.Question{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	repos := seed.Repos{
		Users:     repository.NewUserRepository(gormDB),
		Banks:     repository.NewQuestionBankRepository(gormDB),
		Questions: repository.NewQuestionRepository(gormDB),
		Subjects:  repository.NewSubjectRepository(gormDB),
		Exams:     repository.NewExamRepository(gormDB),
	}

	if err := seed.Demo(context.Background(), repos); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	log.Println("Seed completed successfully!")
}
