package ports

import (
	"context"

	"model-export-pipeline/internal/core/domain"
)

// Deployment reports the cluster-side identity of a rolled-out serving image.
type Deployment struct {
	ExternalID string
	Name       string
	Namespace  string
}

// DeployClient rolls a packaged serving image out as an InferenceService.
// Implementations may be disabled by configuration; IsAvailable gates use.
type DeployClient interface {
	IsAvailable() bool
	Deploy(ctx context.Context, build *domain.Build) (*Deployment, error)
	Undeploy(ctx context.Context, build *domain.Build) error
}
