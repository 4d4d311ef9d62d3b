package repository

import (
	"context"

	"timelogger-api/internal/domain/entity"
)

// ProjectRepository defines storage operations for per-user project catalogs.
// GetByCode returns (nil, nil) when no row matches.
type ProjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*entity.Project, error)
	GetByCode(ctx context.Context, userID, code string) (*entity.Project, error)
	Create(ctx context.Context, p *entity.Project) error
	Update(ctx context.Context, p *entity.Project) error
}
