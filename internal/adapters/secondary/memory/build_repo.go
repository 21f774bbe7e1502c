package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// BuildRepo keeps build records in memory. Used by the one-shot CLI, which
// has no database; records live only as long as the process.
type BuildRepo struct {
	mu     sync.RWMutex
	builds map[uuid.UUID]domain.Build
}

func NewBuildRepo() *BuildRepo {
	return &BuildRepo{builds: make(map[uuid.UUID]domain.Build)}
}

var _ ports.BuildRepository = (*BuildRepo)(nil)

func (r *BuildRepo) Create(ctx context.Context, build *domain.Build) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds[build.ID] = *build
	return nil
}

func (r *BuildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builds[id]
	if !ok {
		return nil, domain.ErrBuildNotFound
	}
	return &b, nil
}

func (r *BuildRepo) Update(ctx context.Context, build *domain.Build) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builds[build.ID]; !ok {
		return domain.ErrBuildNotFound
	}
	r.builds[build.ID] = *build
	return nil
}

func (r *BuildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []*domain.Build
	for id := range r.builds {
		b := r.builds[id]
		if filter.Variant != "" && b.Variant != filter.Variant {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		all = append(all, &b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if filter.Offset >= total {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}
