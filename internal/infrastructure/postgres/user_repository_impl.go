package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"timelogger-api/internal/application"
	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
)

const userColumns = `id, email, password_hash, is_active, email_verified, token_version,
	last_password_change, refresh_token_hash, refresh_jti, time_increment_minutes,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.IsActive, &u.EmailVerified,
		&u.TokenVersion, &u.LastPasswordChange, &u.RefreshTokenHash, &u.RefreshJTI,
		&u.TimeIncrementMinutes, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, time_increment_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING is_active, email_verified, token_version, last_password_change, created_at, updated_at
	`, u.ID, u.Email, u.Password, u.TimeIncrementMinutes)

	err := row.Scan(&u.IsActive, &u.EmailVerified, &u.TokenVersion,
		&u.LastPasswordChange, &u.CreatedAt, &u.UpdatedAt)
	// two concurrent registrations can both pass the email lookup; the unique
	// index decides, and the loser surfaces the same conflict
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return application.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, hash, jti string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET refresh_token_hash = $1, refresh_jti = $2, updated_at = $3
		WHERE id = $4
	`, hash, jti, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RotateRefreshToken only succeeds while the stored slot still carries oldJTI,
// which makes rotation atomic: of two concurrent refreshes with the same
// stale token, exactly one sees a row.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, oldJTI, newHash, newJTI string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET refresh_token_hash = $1, refresh_jti = $2, updated_at = $3
		WHERE id = $4 AND refresh_jti = $5
	`, newHash, newJTI, time.Now().UTC(), id, oldJTI)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_jti = NULL, updated_at = $1
		WHERE id = $2
	`, time.Now().UTC(), id)
	return err
}

func (r *UserRepository) BumpTokenVersion(ctx context.Context, id, newVersion string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET token_version = $1, refresh_token_hash = NULL, refresh_jti = NULL, updated_at = $2
		WHERE id = $3
	`, newVersion, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepository) UpdateTimeIncrement(ctx context.Context, id string, minutes int) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET time_increment_minutes = $1, updated_at = $2
		WHERE id = $3
	`, minutes, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
