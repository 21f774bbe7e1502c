package dto

import (
	"time"

	"github.com/google/uuid"

	"model-export-pipeline/internal/core/domain"
)

// ============================================================================
// Build DTOs
// ============================================================================

type TriggerBuildRequest struct {
	Variant string `json:"variant" binding:"required"`
	Deploy  bool   `json:"deploy"`
}

type ArtifactResponse struct {
	Kind   string `json:"kind"`
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

type BuildResponse struct {
	ID               uuid.UUID          `json:"id"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	Variant          string             `json:"variant"`
	Status           string             `json:"status"`
	CheckpointURL    string             `json:"checkpoint_url"`
	CheckpointSHA256 string             `json:"checkpoint_sha256,omitempty"`
	Artifacts        []ArtifactResponse `json:"artifacts,omitempty"`
	ImageRef         string             `json:"image_ref,omitempty"`
	ImageDigest      string             `json:"image_digest,omitempty"`
	Error            string             `json:"error,omitempty"`
	FinishedAt       *time.Time         `json:"finished_at,omitempty"`
}

type ListBuildsResponse struct {
	Items      []BuildResponse `json:"items"`
	Total      int             `json:"total"`
	PageSize   int             `json:"page_size"`
	NextOffset int             `json:"next_offset"`
}

func ToBuildResponse(b *domain.Build) BuildResponse {
	resp := BuildResponse{
		ID:               b.ID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		Variant:          string(b.Variant),
		Status:           string(b.Status),
		CheckpointURL:    b.CheckpointURL,
		CheckpointSHA256: b.CheckpointSHA256,
		ImageRef:         b.ImageRef,
		ImageDigest:      b.ImageDigest,
		Error:            b.Error,
		FinishedAt:       b.FinishedAt,
	}
	for _, a := range b.Artifacts {
		resp.Artifacts = append(resp.Artifacts, ArtifactResponse{
			Kind:   string(a.Kind),
			Path:   a.Path,
			Size:   a.Size,
			SHA256: a.SHA256,
		})
	}
	return resp
}

// ============================================================================
// Deployment DTOs
// ============================================================================

type DeploymentResponse struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Namespace  string `json:"namespace"`
}
