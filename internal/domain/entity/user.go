package entity

import "time"

// User is the aggregate root for accounts and session integrity.
// Password is a bcrypt hash. RefreshTokenHash/RefreshJTI form the single
// refresh-token slot: both set, or both nil. TokenVersion is a string-encoded
// counter; bumping it invalidates every token minted before the bump.
type User struct {
	ID                   string
	Email                string
	Password             string
	IsActive             bool
	EmailVerified        bool
	TokenVersion         string
	LastPasswordChange   time.Time
	RefreshTokenHash     *string
	RefreshJTI           *string
	TimeIncrementMinutes int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
