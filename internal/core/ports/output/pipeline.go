package ports

import (
	"context"

	"model-export-pipeline/internal/core/domain"
)

// CheckpointFetcher downloads a pretrained checkpoint to destPath. The file
// must appear at destPath atomically: either the whole checkpoint is there
// or nothing is. When spec.CheckpointSHA256 is set the fetcher verifies the
// digest and fails on mismatch.
type CheckpointFetcher interface {
	Fetch(ctx context.Context, spec domain.VariantSpec, destPath string) error
}

// ExportRequest is one export-script invocation.
type ExportRequest struct {
	Kind           domain.ArtifactKind
	CheckpointPath string
	ModelType      string
	OutputPath     string
}

// ModelExporter runs the external export script for one artifact kind.
// The exporter writes OutputPath and returns an error if the script exits
// non-zero; it performs no retries.
type ModelExporter interface {
	Export(ctx context.Context, req ExportRequest) error
}

// PackageRequest describes one image assembly: the staged model-store
// directory becomes a layer on top of the serving base image.
type PackageRequest struct {
	StoreDir     string
	BaseImageRef string
	TargetRef    string
	Entrypoint   []string
	// TarPath, when set, writes the assembled image to a local tarball
	// instead of pushing TargetRef to a registry.
	TarPath string
}

// PackageResult reports where the assembled image ended up.
type PackageResult struct {
	Ref    string
	Digest string
}

// ImagePackager assembles the final serving image.
type ImagePackager interface {
	Package(ctx context.Context, req PackageRequest) (*PackageResult, error)
}
