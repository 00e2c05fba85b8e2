package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"brackets/internal/service"
)

// QuestionHandler handles question endpoints.
type QuestionHandler struct {
	questionService service.QuestionService
}

// NewQuestionHandler creates a new question handler.
func NewQuestionHandler(questionService service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestionRequest represents a question creation request. The serial
// number is assigned by the server.
type CreateQuestionRequest struct {
	ExamID        uint     `json:"exam_id" validate:"required"`
	SubjectID     uint     `json:"subject_id" validate:"required"`
	QuestionText  string   `json:"question_text" validate:"required,min=5"`
	HasOptions    bool     `json:"has_options"`
	Options       []string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Description   string   `json:"description" validate:"omitempty,max=2000"`
}

// UpdateQuestionRequest is a partial patch; absent fields are left unchanged.
type UpdateQuestionRequest struct {
	ExamID        *uint     `json:"exam_id"`
	SubjectID     *uint     `json:"subject_id"`
	QuestionText  *string   `json:"question_text" validate:"omitempty,min=5"`
	HasOptions    *bool     `json:"has_options"`
	Options       *[]string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectAnswer *string   `json:"correct_answer" validate:"omitempty,min=1"`
	Description   *string   `json:"description" validate:"omitempty,max=2000"`
}

// Create godoc
// @Summary Add a question to a bank
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Param request body CreateQuestionRequest true "Question data"
// @Success 201 {object} model.Question
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/questions [post]
func (h *QuestionHandler) Create(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	bankID, err := pathID(c)
	if err != nil {
		return err
	}

	var req CreateQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	question, err := h.questionService.Create(c.Request().Context(), p, bankID, service.CreateQuestionInput{
		ExamID:        req.ExamID,
		SubjectID:     req.SubjectID,
		QuestionText:  req.QuestionText,
		HasOptions:    req.HasOptions,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Description:   req.Description,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, question)
}

// ListByBank godoc
// @Summary List a bank's questions ordered by serial number
// @Tags questions
// @Produce json
// @Param id path int true "Question bank ID"
// @Success 200 {array} model.Question
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/questions [get]
func (h *QuestionHandler) ListByBank(c echo.Context) error {
	bankID, err := pathID(c)
	if err != nil {
		return err
	}
	questions, err := h.questionService.ListByBank(c.Request().Context(), optionalPrincipal(c), bankID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, questions)
}

// Get godoc
// @Summary Get a question by id
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} model.Question
// @Failure 404 {object} errors.ErrorResponse
// @Router /questions/{id} [get]
func (h *QuestionHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	question, err := h.questionService.Get(c.Request().Context(), optionalPrincipal(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, question)
}

// Update godoc
// @Summary Update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body UpdateQuestionRequest true "Fields to update"
// @Success 200 {object} model.Question
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /questions/{id} [put]
func (h *QuestionHandler) Update(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateQuestionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	question, err := h.questionService.Update(c.Request().Context(), p, id, service.UpdateQuestionInput{
		ExamID:        req.ExamID,
		SubjectID:     req.SubjectID,
		QuestionText:  req.QuestionText,
		HasOptions:    req.HasOptions,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Description:   req.Description,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, question)
}

// Delete godoc
// @Summary Delete a question
// @Tags questions
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /questions/{id} [delete]
func (h *QuestionHandler) Delete(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.questionService.Delete(c.Request().Context(), p, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
