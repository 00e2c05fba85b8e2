package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"brackets/internal/auth"
	apperrors "brackets/internal/errors"
)

// PrincipalContextKey is where the optional-auth middleware stores the
// authenticated principal on the echo context.
const PrincipalContextKey = "principal"

// optionalPrincipal returns the principal or nil for unauthenticated callers.
func optionalPrincipal(c echo.Context) *auth.Principal {
	if p, ok := c.Get(PrincipalContextKey).(auth.Principal); ok {
		return &p
	}
	return nil
}

// requirePrincipal returns the principal or a 401 error.
func requirePrincipal(c echo.Context) (auth.Principal, error) {
	p, ok := c.Get(PrincipalContextKey).(auth.Principal)
	if !ok {
		return auth.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "authentication required",
			Code:  "UNAUTHENTICATED",
		})
	}
	return p, nil
}

// httpError converts a service error into an echo HTTP error with the
// standard response body, including field messages for validation errors.
func httpError(err error) *echo.HTTPError {
	he := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
