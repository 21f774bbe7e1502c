package domain

import (
	"time"

	"github.com/google/uuid"
)

type BuildStatus string

const (
	BuildStatusRunning   BuildStatus = "RUNNING"
	BuildStatusSucceeded BuildStatus = "SUCCEEDED"
	BuildStatusFailed    BuildStatus = "FAILED"
)

// Build is one end-to-end pipeline run: checkpoint fetch, two exports, image
// packaging. A build is created once and only its status, artifacts and
// image reference are filled in as stages complete; there is no update path
// for a finished build.
type Build struct {
	ID               uuid.UUID   `json:"id"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Variant          Variant     `json:"variant"`
	Status           BuildStatus `json:"status"`
	CheckpointURL    string      `json:"checkpoint_url"`
	CheckpointSHA256 string      `json:"checkpoint_sha256,omitempty"`
	Artifacts        []Artifact  `json:"artifacts,omitempty"`
	ImageRef         string      `json:"image_ref,omitempty"`
	ImageDigest      string      `json:"image_digest,omitempty"`
	Error            string      `json:"error,omitempty"`
	FinishedAt       *time.Time  `json:"finished_at,omitempty"`
}

// ArtifactByKind returns the recorded artifact of the given kind, if any.
func (b *Build) ArtifactByKind(kind ArtifactKind) (Artifact, bool) {
	for _, a := range b.Artifacts {
		if a.Kind == kind {
			return a, true
		}
	}
	return Artifact{}, false
}
