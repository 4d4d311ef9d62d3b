package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
)

// TimeEntryService enforces the per-user consistency rules on entry
// mutations: closed intervals never overlap (half-open test) and at most one
// entry may be running. Checks and the following write run under the
// repository's per-user lock so concurrent requests cannot both slip past a
// check.
type TimeEntryService struct {
	Entries  repository.TimeEntryRepository
	Projects repository.ProjectRepository
	Logger   *logrus.Logger
}

func NewTimeEntryService(entries repository.TimeEntryRepository, projects repository.ProjectRepository, logger *logrus.Logger) *TimeEntryService {
	return &TimeEntryService{Entries: entries, Projects: projects, Logger: logger}
}

// ComputeDuration returns the entry length in whole seconds, clamped at zero
// so clock skew or malformed input can never yield a negative duration.
func ComputeDuration(start time.Time, end time.Time) int {
	secs := int(end.Sub(start).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

// CreateEntryInput carries the fields for a new entry. End == nil starts a
// running timer.
type CreateEntryInput struct {
	ProjectCode string
	Activity    string
	Start       time.Time
	End         *time.Time
	Notes       string
}

// EntryPatch carries partial-update fields. Nil pointer means "leave as is".
// For End, presence and the null transition are distinct: EndSet reports the
// field appeared in the patch at all, and a nil End with EndSet true clears
// the end timestamp (re-opens the timer).
type EntryPatch struct {
	ProjectCode *string
	Activity    *string
	Start       *time.Time
	End         *time.Time
	EndSet      bool
	Notes       *string
}

func (s *TimeEntryService) List(ctx context.Context, userID string, f repository.ListFilter) ([]*entity.TimeEntry, error) {
	return s.Entries.ListByUser(ctx, userID, f)
}

// Get returns the entry after verifying ownership.
func (s *TimeEntryService) Get(ctx context.Context, userID, entryID string) (*entity.TimeEntry, error) {
	e, err := s.Entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotFound
	}
	if e.UserID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}

// Create validates the interval against the user's existing entries and
// persists the new one atomically.
func (s *TimeEntryService) Create(ctx context.Context, userID string, in CreateEntryInput) (*entity.TimeEntry, error) {
	if in.End != nil && !in.End.After(in.Start) {
		return nil, ErrInvalidInterval
	}

	s.ensureProject(ctx, userID, in.ProjectCode)

	e := &entity.TimeEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProjectCode: strings.TrimSpace(in.ProjectCode),
		Activity:    in.Activity,
		StartUTC:    in.Start.UTC(),
		Notes:       in.Notes,
	}
	if in.End != nil {
		end := in.End.UTC()
		e.EndUTC = &end
		e.Seconds = ComputeDuration(e.StartUTC, end)
	}

	err := s.Entries.WithUserLock(ctx, userID, func(ctx context.Context, repo repository.TimeEntryRepository) error {
		if e.EndUTC == nil {
			running, err := repo.HasRunning(ctx, userID, "")
			if err != nil {
				return err
			}
			if running {
				return ErrRunningConflict
			}
		} else {
			overlap, err := repo.HasOverlap(ctx, userID, e.StartUTC, *e.EndUTC, "")
			if err != nil {
				return err
			}
			if overlap {
				return ErrOverlapConflict
			}
		}
		return repo.Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update applies a partial patch, re-validates the effective window excluding
// the entry itself, and recomputes the duration when the window moved.
func (s *TimeEntryService) Update(ctx context.Context, userID, entryID string, patch EntryPatch) (*entity.TimeEntry, error) {
	var updated *entity.TimeEntry

	if patch.ProjectCode != nil {
		s.ensureProject(ctx, userID, *patch.ProjectCode)
	}

	err := s.Entries.WithUserLock(ctx, userID, func(ctx context.Context, repo repository.TimeEntryRepository) error {
		e, err := repo.GetByID(ctx, entryID)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrNotFound
		}
		if e.UserID != userID {
			return ErrForbidden
		}

		newStart := e.StartUTC
		if patch.Start != nil {
			newStart = patch.Start.UTC()
		}
		newEnd := e.EndUTC
		if patch.EndSet {
			if patch.End != nil {
				end := patch.End.UTC()
				newEnd = &end
			} else {
				newEnd = nil
			}
		}

		if newEnd != nil && !newEnd.After(newStart) {
			return ErrInvalidInterval
		}
		if newEnd == nil {
			running, err := repo.HasRunning(ctx, userID, e.ID)
			if err != nil {
				return err
			}
			if running {
				return ErrRunningConflict
			}
		} else {
			overlap, err := repo.HasOverlap(ctx, userID, newStart, *newEnd, e.ID)
			if err != nil {
				return err
			}
			if overlap {
				return ErrOverlapConflict
			}
		}

		windowChanged := patch.Start != nil || patch.EndSet
		e.StartUTC = newStart
		e.EndUTC = newEnd
		if patch.ProjectCode != nil {
			e.ProjectCode = strings.TrimSpace(*patch.ProjectCode)
		}
		if patch.Activity != nil {
			e.Activity = *patch.Activity
		}
		if patch.Notes != nil {
			e.Notes = *patch.Notes
		}
		if windowChanged {
			if e.EndUTC != nil {
				e.Seconds = ComputeDuration(e.StartUTC, *e.EndUTC)
			} else {
				e.Seconds = 0
			}
		}
		if err := repo.Update(ctx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the entry once ownership checks out.
func (s *TimeEntryService) Delete(ctx context.Context, userID, entryID string) error {
	e, err := s.Entries.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrNotFound
	}
	if e.UserID != userID {
		return ErrForbidden
	}
	ok, err := s.Entries.Delete(ctx, entryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ensureProject auto-creates the referenced project code for the user.
// Best-effort: a failure here must never abort the entry operation, so it is
// logged and swallowed.
func (s *TimeEntryService) ensureProject(ctx context.Context, userID, code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}
	existing, err := s.Projects.GetByCode(ctx, userID, code)
	if err == nil && existing != nil {
		return
	}
	if err == nil {
		err = s.Projects.Create(ctx, &entity.Project{ID: uuid.NewString(), UserID: userID, Code: code})
	}
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"code":    code,
		}).Warn("project auto-create failed")
	}
}
