package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"brackets/internal/auth"
	"brackets/internal/errors"
	"brackets/internal/model"
	"brackets/internal/service"
)

// BankHandler handles question bank endpoints.
type BankHandler struct {
	bankService service.BankService
}

// NewBankHandler creates a new question bank handler.
func NewBankHandler(bankService service.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// CreateBankRequest represents a question bank creation request.
type CreateBankRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	Organization string `json:"organization" validate:"required,min=2"`
	Introduction string `json:"introduction"`
}

// UpdateBankRequest is a partial patch; absent fields are left unchanged.
type UpdateBankRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3"`
	Organization *string `json:"organization" validate:"omitempty,min=2"`
	Introduction *string `json:"introduction"`
}

// Create godoc
// @Summary Create a question bank in draft status
// @Tags question-banks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBankRequest true "Question bank data"
// @Success 201 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /question-banks [post]
func (h *BankHandler) Create(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req CreateBankRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	bank, err := h.bankService.Create(c.Request().Context(), p, service.CreateBankInput{
		Title:        req.Title,
		Organization: req.Organization,
		Introduction: req.Introduction,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, bank)
}

// List godoc
// @Summary List question banks visible to the caller
// @Tags question-banks
// @Produce json
// @Param creator_id query int false "Filter by creator (own banks unless admin)"
// @Success 200 {array} model.QuestionBank
// @Failure 403 {object} errors.ErrorResponse
// @Router /question-banks [get]
func (h *BankHandler) List(c echo.Context) error {
	var creatorID uint
	if raw := c.QueryParam("creator_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid creator_id")
		}
		creatorID = uint(parsed)
	}

	banks, err := h.bankService.List(c.Request().Context(), optionalPrincipal(c), creatorID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, banks)
}

// ListPublished godoc
// @Summary List published question banks
// @Tags question-banks
// @Produce json
// @Success 200 {array} model.QuestionBank
// @Router /question-banks/published [get]
func (h *BankHandler) ListPublished(c echo.Context) error {
	banks, err := h.bankService.ListPublished(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, banks)
}

// Counts godoc
// @Summary Batch question counts keyed by bank id
// @Description Banks not visible to the caller report zero, same as missing ones.
// @Tags question-banks
// @Produce json
// @Param ids query string true "Comma-separated bank ids"
// @Success 200 {object} map[string]int64
// @Failure 400 {object} errors.ErrorResponse
// @Router /question-banks/counts [get]
func (h *BankHandler) Counts(c echo.Context) error {
	raw := c.QueryParam("ids")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "ids query parameter is required",
			Code:  "MISSING_IDS",
		})
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "ids must be positive integers",
				Code:  "INVALID_IDS",
			})
		}
		ids = append(ids, uint(parsed))
	}

	counts, err := h.bankService.QuestionCounts(c.Request().Context(), optionalPrincipal(c), ids)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, counts)
}

// Get godoc
// @Summary Get a question bank by id
// @Tags question-banks
// @Produce json
// @Param id path int true "Question bank ID"
// @Success 200 {object} model.QuestionBank
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id} [get]
func (h *BankHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	bank, err := h.bankService.Get(c.Request().Context(), optionalPrincipal(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bank)
}

// Update godoc
// @Summary Update a question bank
// @Tags question-banks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Param request body UpdateBankRequest true "Fields to update"
// @Success 200 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id} [put]
func (h *BankHandler) Update(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateBankRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return httpError(err)
	}

	bank, err := h.bankService.Update(c.Request().Context(), p, id, service.UpdateBankInput{
		Title:        req.Title,
		Organization: req.Organization,
		Introduction: req.Introduction,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bank)
}

// Submit godoc
// @Summary Submit a draft bank for approval
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Success 200 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/submit [post]
func (h *BankHandler) Submit(c echo.Context) error {
	return h.transition(c, h.bankService.Submit)
}

// Approve godoc
// @Summary Approve a pending bank (admin only)
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Success 200 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/approve [post]
func (h *BankHandler) Approve(c echo.Context) error {
	return h.transition(c, h.bankService.Approve)
}

// Reject godoc
// @Summary Reject a pending bank or cancel an approval request
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Success 200 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/reject [post]
func (h *BankHandler) Reject(c echo.Context) error {
	return h.transition(c, h.bankService.Reject)
}

// Unpublish godoc
// @Summary Take a published bank back to draft
// @Tags question-banks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Success 200 {object} model.QuestionBank
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id}/unpublish [post]
func (h *BankHandler) Unpublish(c echo.Context) error {
	return h.transition(c, h.bankService.Unpublish)
}

// Delete godoc
// @Summary Delete a question bank and all its questions
// @Tags question-banks
// @Security BearerAuth
// @Param id path int true "Question bank ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /question-banks/{id} [delete]
func (h *BankHandler) Delete(c echo.Context) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.bankService.Delete(c.Request().Context(), p, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, p auth.Principal, id uint) (*model.QuestionBank, error)

func (h *BankHandler) transition(c echo.Context, fn transitionFunc) error {
	p, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	bank, err := fn(c.Request().Context(), p, id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bank)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}
