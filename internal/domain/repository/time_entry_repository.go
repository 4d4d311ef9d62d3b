package repository

import (
	"context"
	"time"

	"timelogger-api/internal/domain/entity"
)

// ListFilter narrows ListByUser to a UTC window with paging.
type ListFilter struct {
	From   *time.Time // inclusive
	To     *time.Time // exclusive
	Offset int
	Limit  int
}

// TimeEntryRepository defines storage operations for time entries. GetByID
// returns (nil, nil) when no row matches.
type TimeEntryRepository interface {
	ListByUser(ctx context.Context, userID string, f ListFilter) ([]*entity.TimeEntry, error)
	GetByID(ctx context.Context, id string) (*entity.TimeEntry, error)

	// HasOverlap reports whether any other closed entry of the user overlaps
	// [start, end) under half-open semantics. excludeID may be empty.
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)

	// HasRunning reports whether the user has an open timer other than excludeID.
	HasRunning(ctx context.Context, userID string, excludeID string) (bool, error)

	Create(ctx context.Context, e *entity.TimeEntry) error
	Update(ctx context.Context, e *entity.TimeEntry) error
	Delete(ctx context.Context, id string) (bool, error)

	// WithUserLock runs fn under a per-user serialization guard so that the
	// invariant checks and the following write commit as one atomic unit with
	// respect to concurrent requests for the same user. The repository passed
	// to fn is bound to the guarded transaction.
	WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context, r TimeEntryRepository) error) error
}
