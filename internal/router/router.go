package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"brackets/internal/auth"
	"brackets/internal/config"
	apperrors "brackets/internal/errors"
	"brackets/internal/handler"
)

// Register wires routes and middleware. Public reads run behind the
// optional-auth middleware only; mutations additionally pass the strict
// JWT gate, so unauthenticated mutation attempts fail with 401 before any
// entity is loaded.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	bankHandler *handler.BankHandler,
	questionHandler *handler.QuestionHandler,
	lookupHandler *handler.LookupHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", OptionalAuth(jwtService))

	requireJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	})

	// Auth
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me, requireJWT)

	// Question banks
	api.GET("/question-banks", bankHandler.List)
	api.POST("/question-banks", bankHandler.Create, requireJWT)
	api.GET("/question-banks/published", bankHandler.ListPublished)
	api.GET("/question-banks/counts", bankHandler.Counts)
	api.GET("/question-banks/:id", bankHandler.Get)
	api.PUT("/question-banks/:id", bankHandler.Update, requireJWT)
	api.DELETE("/question-banks/:id", bankHandler.Delete, requireJWT)
	api.POST("/question-banks/:id/submit", bankHandler.Submit, requireJWT)
	api.POST("/question-banks/:id/approve", bankHandler.Approve, requireJWT)
	api.POST("/question-banks/:id/reject", bankHandler.Reject, requireJWT)
	api.POST("/question-banks/:id/unpublish", bankHandler.Unpublish, requireJWT)

	// Questions
	api.GET("/question-banks/:id/questions", questionHandler.ListByBank)
	api.POST("/question-banks/:id/questions", questionHandler.Create, requireJWT)
	api.GET("/questions/:id", questionHandler.Get)
	api.PUT("/questions/:id", questionHandler.Update, requireJWT)
	api.DELETE("/questions/:id", questionHandler.Delete, requireJWT)

	// Subject and exam lookups
	api.GET("/subjects", lookupHandler.ListSubjects)
	api.POST("/subjects", lookupHandler.CreateSubject, requireJWT)
	api.GET("/exams", lookupHandler.ListExams)
	api.POST("/exams", lookupHandler.CreateExam, requireJWT)
}

// OptionalAuth attaches the authenticated principal to the context when a
// valid bearer token is present, and continues silently otherwise.
func OptionalAuth(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
				if claims, err := jwtService.ValidateToken(token); err == nil {
					c.Set(handler.PrincipalContextKey, claims.Principal())
				}
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo, reporting violations as
// field-level validation errors keyed by JSON field name.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return apperrors.NewValidationError(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " characters or items"
	case "max":
		return "must have at most " + fe.Param() + " characters or items"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must be numeric"
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}
