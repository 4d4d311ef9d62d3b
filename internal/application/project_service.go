package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"timelogger-api/internal/domain/entity"
	"timelogger-api/internal/domain/repository"
)

// ProjectService manages the per-user project catalog. Codes are normalized
// by trimming whitespace only; case is preserved to avoid breaking existing
// references from entries.
type ProjectService struct {
	Projects repository.ProjectRepository
	Logger   *logrus.Logger
}

func NewProjectService(projects repository.ProjectRepository, logger *logrus.Logger) *ProjectService {
	return &ProjectService{Projects: projects, Logger: logger}
}

type ProjectInput struct {
	Code        string
	Name        string
	Description string
	Priority    string
}

type ProjectPatch struct {
	Name        *string
	Description *string
	Priority    *string
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]*entity.Project, error) {
	return s.Projects.ListByUser(ctx, userID)
}

// UpsertByCode creates the project or refreshes its metadata. Only non-empty
// payload fields overwrite existing values.
func (s *ProjectService) UpsertByCode(ctx context.Context, userID string, in ProjectInput) (*entity.Project, error) {
	code := strings.TrimSpace(in.Code)
	p, err := s.Projects.GetByCode(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &entity.Project{
			ID:          uuid.NewString(),
			UserID:      userID,
			Code:        code,
			Name:        in.Name,
			Description: in.Description,
			Priority:    in.Priority,
		}
		if err := s.Projects.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	changed := false
	if in.Name != "" && in.Name != p.Name {
		p.Name = in.Name
		changed = true
	}
	if in.Description != "" && in.Description != p.Description {
		p.Description = in.Description
		changed = true
	}
	if in.Priority != "" && in.Priority != p.Priority {
		p.Priority = in.Priority
		changed = true
	}
	if changed {
		if err := s.Projects.Update(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// UpdateByCode patches metadata on an existing project.
func (s *ProjectService) UpdateByCode(ctx context.Context, userID, code string, patch ProjectPatch) (*entity.Project, error) {
	p, err := s.Projects.GetByCode(ctx, userID, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Priority != nil {
		p.Priority = *patch.Priority
	}
	if err := s.Projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
