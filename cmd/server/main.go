package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "brackets/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"brackets/internal/auth"
	"brackets/internal/cache"
	"brackets/internal/config"
	"brackets/internal/db"
	"brackets/internal/handler"
	"brackets/internal/model"
	"brackets/internal/repository"
	"brackets/internal/router"
	"brackets/internal/seed"
	"brackets/internal/service"
)

// @title Brackets API
// @version 1.0
// @description Question bank service with creator authoring, admin moderation, and public learner access.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	var repos seed.Repos
	switch cfg.StorageDriver {
	case config.DriverMemory:
		log.Println("Using in-memory storage driver")
		store := repository.NewMemoryStore()
		repos = seed.Repos{
			Users:     store.Users(),
			Banks:     store.QuestionBanks(),
			Questions: store.Questions(),
			Subjects:  store.Subjects(),
			Exams:     store.Exams(),
		}
	default:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("database init: %v", err)
		}

		// Drop tables if RESET_DB environment variable is set
		if os.Getenv("RESET_DB") == "true" {
			log.Println("RESET_DB=true detected, dropping all tables...")
			tables := []interface{}{
				&model.Question{},
				&model.QuestionBank{},
				&model.Subject{},
				&model.Exam{},
				&model.User{},
			}
			for _, table := range tables {
				if err := gormDB.Migrator().DropTable(table); err != nil {
					log.Printf("Warning: Failed to drop table (may not exist): %v", err)
				}
			}
			log.Println("Tables dropped")
		}

		// Run migrations for all models
		if err := gormDB.AutoMigrate(
			&model.User{},
			&model.Subject{},
			&model.Exam{},
			&model.QuestionBank{},
			&model.Question{},
		); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}

		repos = seed.Repos{
			Users:     repository.NewUserRepository(gormDB),
			Banks:     repository.NewQuestionBankRepository(gormDB),
			Questions: repository.NewQuestionRepository(gormDB),
			Subjects:  repository.NewSubjectRepository(gormDB),
			Exams:     repository.NewExamRepository(gormDB),
		}
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(repos.Users, jwtService, tokenStore)
	bankService := service.NewBankService(repos.Banks, repos.Questions, cacheClient)
	questionService := service.NewQuestionService(repos.Questions, repos.Banks, repos.Subjects, repos.Exams, cacheClient)
	lookupService := service.NewLookupService(repos.Subjects, repos.Exams)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	bankHandler := handler.NewBankHandler(bankService)
	questionHandler := handler.NewQuestionHandler(questionService)
	lookupHandler := handler.NewLookupHandler(lookupService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		authHandler,
		bankHandler,
		questionHandler,
		lookupHandler,
	)

	// Opt-in demo seeding, useful with the memory driver
	if cfg.SeedDemo {
		if err := seed.Demo(context.Background(), repos); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
		log.Println("Demo data seeded")
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
