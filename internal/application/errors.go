package application

import (
	"errors"

	"timelogger-api/pkg/helpers"
)

// Terminal error taxonomy surfaced to the HTTP layer. None of these are
// retried; they describe client input or security conditions. Store failures
// propagate as-is and map to an internal error.
var (
	// Auth flow
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrWrongTokenType     = errors.New("invalid token type")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user disabled")
	ErrVersionRevoked     = errors.New("token version mismatch (revoked)")
	ErrRefreshInvalidated = errors.New("refresh invalidated")
	ErrRefreshReused      = errors.New("refresh token reused")

	// Time entries / projects
	ErrInvalidInterval = errors.New("end_utc must be greater than start_utc")
	ErrRunningConflict = errors.New("a timer is already running")
	ErrOverlapConflict = errors.New("overlapping time entry for user")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
)

var authErrors = []error{
	ErrMissingToken,
	ErrWrongTokenType,
	ErrUserNotFound,
	ErrUserDisabled,
	ErrVersionRevoked,
	ErrRefreshInvalidated,
	ErrRefreshReused,
	ErrInvalidCredentials,
	helpers.ErrInvalidToken,
}

// IsAuthError reports whether err belongs to the unauthorized taxonomy. A
// store failure during authentication is not an auth error and must surface
// as an internal failure, never as a logout.
func IsAuthError(err error) bool {
	for _, e := range authErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
