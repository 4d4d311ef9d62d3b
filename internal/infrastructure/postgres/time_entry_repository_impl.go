package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository code can run pooled or inside a user-locked transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const entryColumns = `id, user_id, project_code, activity, start_utc, end_utc, seconds, notes,
	created_at, updated_at`

type TimeEntryRepository struct {
	pool *pgxpool.Pool
	q    querier
}

func NewTimeEntryRepository(pool *pgxpool.Pool) *TimeEntryRepository {
	return &TimeEntryRepository{pool: pool, q: pool}
}

func scanEntry(row pgx.Row) (*entity.TimeEntry, error) {
	e := &entity.TimeEntry{}
	var notes *string
	err := row.Scan(&e.ID, &e.UserID, &e.ProjectCode, &e.Activity, &e.StartUTC, &e.EndUTC,
		&e.Seconds, &notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if notes != nil {
		e.Notes = *notes
	}
	return e, nil
}

func (r *TimeEntryRepository) ListByUser(ctx context.Context, userID string, f repository.ListFilter) ([]*entity.TimeEntry, error) {
	sql := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1`
	args := []any{userID}
	if f.From != nil {
		args = append(args, *f.From)
		sql += ` AND start_utc >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		sql += ` AND start_utc < $` + strconv.Itoa(len(args))
	}
	sql += ` ORDER BY start_utc DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sql += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sql += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id string) (*entity.TimeEntry, error) {
	return scanEntry(r.q.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM time_entries
		WHERE id = $1
	`, id))
}

// HasOverlap uses the half-open interval test: a closed entry overlaps
// [start, end) iff existing.end_utc > start AND existing.start_utc < end.
// Touching endpoints do not count.
func (r *TimeEntryRepository) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM time_entries
			WHERE user_id = $1
			  AND end_utc IS NOT NULL
			  AND end_utc > $2
			  AND start_utc < $3
			  AND ($4 = '' OR id <> $4::uuid)
		)
	`, userID, start, end, excludeID).Scan(&exists)
	return exists, err
}

func (r *TimeEntryRepository) HasRunning(ctx context.Context, userID string, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM time_entries
			WHERE user_id = $1
			  AND end_utc IS NULL
			  AND ($2 = '' OR id <> $2::uuid)
		)
	`, userID, excludeID).Scan(&exists)
	return exists, err
}

func (r *TimeEntryRepository) Create(ctx context.Context, e *entity.TimeEntry) error {
	row := r.q.QueryRow(ctx, `
		INSERT INTO time_entries (id, user_id, project_code, activity, start_utc, end_utc, seconds, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at
	`, e.ID, e.UserID, e.ProjectCode, e.Activity, e.StartUTC, e.EndUTC, e.Seconds, e.Notes)
	return row.Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *TimeEntryRepository) Update(ctx context.Context, e *entity.TimeEntry) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.q.Exec(ctx, `
		UPDATE time_entries
		SET project_code = $1, activity = $2, start_utc = $3, end_utc = $4,
		    seconds = $5, notes = NULLIF($6, ''), updated_at = $7
		WHERE id = $8
	`, e.ProjectCode, e.Activity, e.StartUTC, e.EndUTC, e.Seconds, e.Notes, e.UpdatedAt, e.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.q.Exec(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// WithUserLock serializes same-user writes with a transaction-scoped advisory
// lock, so the invariant checks and the following insert/update commit as one
// unit. The lock key is derived from the user id; unrelated users do not
// contend.
func (r *TimeEntryRepository) WithUserLock(ctx context.Context, userID string, fn func(ctx context.Context, repo repository.TimeEntryRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return err
	}
	if err := fn(ctx, &TimeEntryRepository{pool: r.pool, q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ repository.TimeEntryRepository = (*TimeEntryRepository)(nil)
