package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"brackets/internal/service"
)

// LookupHandler handles the subject and exam reference endpoints.
type LookupHandler struct {
	lookupService service.LookupService
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(lookupService service.LookupService) *LookupHandler {
	return &LookupHandler{lookupService: lookupService}
}

// CreateSubjectRequest represents a subject get-or-create request.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// CreateExamRequest represents an exam get-or-create request.
type CreateExamRequest struct {
	Name string `json:"name" validate:"required,min=1"`
	Year string `json:"year" validate:"required,len=4,numeric"`
}

// ListSubjects godoc
// @Summary List subjects
// @Tags lookups
// @Produce json
// @Success 200 {array} model.Subject
// @Router /subjects [get]
func (h *LookupHandler) ListSubjects(c echo.Context) error {
	subjects, err := h.lookupService.ListSubjects(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, subjects)
}

// CreateSubject godoc
// @Summary Get or create a subject (case-insensitive dedup)
// @Tags lookups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSubjectRequest true "Subject name"
// @Success 200 {object} model.Subject "Existing subject"
// @Success 201 {object} model.Subject "Newly created subject"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /subjects [post]
func (h *LookupHandler) CreateSubject(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}

	var req CreateSubjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	subject, created, err := h.lookupService.GetOrCreateSubject(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, subject)
}

// ListExams godoc
// @Summary List exams
// @Tags lookups
// @Produce json
// @Success 200 {array} model.Exam
// @Router /exams [get]
func (h *LookupHandler) ListExams(c echo.Context) error {
	exams, err := h.lookupService.ListExams(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, exams)
}

// CreateExam godoc
// @Summary Get or create an exam (case-insensitive dedup on name and year)
// @Tags lookups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExamRequest true "Exam name and year"
// @Success 200 {object} model.Exam "Existing exam"
// @Success 201 {object} model.Exam "Newly created exam"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /exams [post]
func (h *LookupHandler) CreateExam(c echo.Context) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}

	var req CreateExamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	exam, created, err := h.lookupService.GetOrCreateExam(c.Request().Context(), req.Name, req.Year)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, exam)
}
