package domain

import "errors"

// ============================================================================
// Variant / Checkpoint Errors
// ============================================================================

var (
	ErrUnknownVariant     = errors.New("unknown model variant")
	ErrMissingVariant     = errors.New("model variant is required")
	ErrChecksumMismatch   = errors.New("checkpoint checksum mismatch")
	ErrInvalidManifest    = errors.New("invalid variant manifest")
	ErrManifestUnknownKey = errors.New("variant manifest references unknown variant")
)

// ============================================================================
// Export Errors
// ============================================================================

var (
	ErrArtifactAbsent = errors.New("expected artifact file is absent")
	ErrArtifactEmpty  = errors.New("exported artifact is empty")
)

// ============================================================================
// Packaging Errors
// ============================================================================

var (
	ErrServingConfigAbsent = errors.New("serving configuration document is absent")
)

// ============================================================================
// Build Errors
// ============================================================================

var (
	ErrBuildNotFound  = errors.New("build not found")
	ErrBuildNotDone   = errors.New("build has not completed successfully")
	ErrInvalidBuildID = errors.New("build ID is required")
	ErrDeployDisabled = errors.New("deployment integration is disabled")
	ErrDeployNoImage  = errors.New("build produced no image to deploy")
)

// ============================================================================
// Regression Matrix Errors
// ============================================================================

var (
	ErrEmptyMatrix          = errors.New("regression matrix has no cells")
	ErrRegressionRunMissing = errors.New("regression run not found")
)
