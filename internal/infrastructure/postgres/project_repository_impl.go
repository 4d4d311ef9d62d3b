package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{}
	var name, desc, prio *string
	err := row.Scan(&p.ID, &p.UserID, &p.Code, &name, &desc, &prio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if name != nil {
		p.Name = *name
	}
	if desc != nil {
		p.Description = *desc
	}
	if prio != nil {
		p.Priority = *prio
	}
	return p, nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, code, name, description, priority, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) GetByCode(ctx context.Context, userID, code string) (*entity.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `
		SELECT id, user_id, code, name, description, priority, created_at, updated_at
		FROM projects
		WHERE user_id = $1 AND code = $2
	`, userID, code))
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, user_id, code, name, description, priority)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Code, p.Name, p.Description, p.Priority)
	return row.Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) Update(ctx context.Context, p *entity.Project) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET name = NULLIF($1, ''), description = NULLIF($2, ''), priority = NULLIF($3, ''), updated_at = $4
		WHERE id = $5
	`, p.Name, p.Description, p.Priority, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
