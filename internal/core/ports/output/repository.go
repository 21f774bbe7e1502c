package ports

import (
	"context"

	"github.com/google/uuid"

	"model-export-pipeline/internal/core/domain"
)

// BuildListFilter narrows List results.
type BuildListFilter struct {
	Variant domain.Variant
	Status  domain.BuildStatus
	Limit   int
	Offset  int
}

// BuildRepository persists pipeline runs.
type BuildRepository interface {
	Create(ctx context.Context, build *domain.Build) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error)
	Update(ctx context.Context, build *domain.Build) error
	List(ctx context.Context, filter BuildListFilter) ([]*domain.Build, int, error)
}

// RegressionRepository persists matrix runs.
type RegressionRepository interface {
	Create(ctx context.Context, run *domain.RegressionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RegressionRun, error)
	List(ctx context.Context, limit, offset int) ([]*domain.RegressionRun, int, error)
}
