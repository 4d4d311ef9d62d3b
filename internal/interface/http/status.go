package handlers

import (
	"errors"
	"net/http"

	"timelogger-api/internal/application"
	"timelogger-api/pkg/helpers"
)

// statusFor maps the application error taxonomy to HTTP status codes.
// Anything unknown is a store-level or internal failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrMissingToken),
		errors.Is(err, application.ErrWrongTokenType),
		errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrUserDisabled),
		errors.Is(err, application.ErrVersionRevoked),
		errors.Is(err, application.ErrRefreshInvalidated),
		errors.Is(err, application.ErrRefreshReused),
		errors.Is(err, application.ErrInvalidCredentials),
		errors.Is(err, helpers.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEmailTaken),
		errors.Is(err, application.ErrRunningConflict),
		errors.Is(err, application.ErrOverlapConflict):
		return http.StatusConflict
	case errors.Is(err, application.ErrInvalidInterval):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// message hides internal failure details from clients.
func message(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
