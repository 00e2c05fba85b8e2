package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrBankNotFound is returned when a question bank is missing or not
	// visible to the caller. Hidden banks report not-found rather than
	// forbidden so their existence does not leak.
	ErrBankNotFound = errors.New("question bank not found")
	// ErrQuestionNotFound is returned when a question is missing or its
	// parent bank is not visible to the caller.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSubjectNotFound is returned when a referenced subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrExamNotFound is returned when a referenced exam does not exist.
	ErrExamNotFound = errors.New("exam not found")
	// ErrUserNotFound is returned when a user lookup fails.
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden is returned when the principal is authenticated but not
	// the resource owner and not an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidTransition is returned when a status change is not allowed
	// from the bank's current state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidationError carries per-field messages for a 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation error"
}

// NewValidationError builds a ValidationError from field messages.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		he := NewHTTPError(http.StatusBadRequest, "validation error", "VALIDATION_ERROR")
		he.Fields = ve.Fields
		return he
	}
	switch {
	case errors.Is(err, ErrBankNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "BANK_NOT_FOUND")
	case errors.Is(err, ErrQuestionNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "QUESTION_NOT_FOUND")
	case errors.Is(err, ErrSubjectNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "SUBJECT_NOT_FOUND")
	case errors.Is(err, ErrExamNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EXAM_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TRANSITION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
