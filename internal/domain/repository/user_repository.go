package repository

import (
	"context"

	"timelogger-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// SetRefreshToken stores the refresh slot (hash + jti), replacing any
	// previous value unconditionally. Used on login and registration.
	SetRefreshToken(ctx context.Context, id, hash, jti string) error

	// RotateRefreshToken replaces the refresh slot only if it still holds
	// oldJTI. Returns false when another rotation won the race.
	RotateRefreshToken(ctx context.Context, id, oldJTI, newHash, newJTI string) (bool, error)

	// ClearRefreshToken empties the refresh slot.
	ClearRefreshToken(ctx context.Context, id string) error

	// BumpTokenVersion sets the new version and empties the refresh slot in
	// one statement, invalidating all outstanding tokens.
	BumpTokenVersion(ctx context.Context, id, newVersion string) error

	UpdateTimeIncrement(ctx context.Context, id string, minutes int) error
}
