package domain

import "path"

// ArtifactKind identifies one of the two graphs produced by an export run.
type ArtifactKind string

const (
	ArtifactEncoder ArtifactKind = "encoder"
	ArtifactDecoder ArtifactKind = "decoder"
)

// Fixed artifact file names under the export output directory.
const (
	EncoderFileName = "encoder.onnx"
	DecoderFileName = "decoder.onnx"
)

// Model store layout inside the serving image. The inference server expects
// exactly this shape: one directory per logical model holding a single
// version subdirectory, plus the routing config at the store root.
const (
	ModelStoreRoot        = "models"
	ModelVersionDir       = "1"
	ServingConfigFileName = "config.json"
)

// FileName returns the fixed output file name for the artifact kind.
func (k ArtifactKind) FileName() string {
	if k == ArtifactDecoder {
		return DecoderFileName
	}
	return EncoderFileName
}

// StorePath returns the artifact's destination path relative to the staged
// image filesystem, e.g. models/encoder/1/encoder.onnx.
func (k ArtifactKind) StorePath() string {
	return path.Join(ModelStoreRoot, string(k), ModelVersionDir, k.FileName())
}

// ServingConfigPath is the routing config's destination relative to the
// staged image filesystem.
func ServingConfigPath() string {
	return path.Join(ModelStoreRoot, ServingConfigFileName)
}

// Artifact records one exported graph file.
type Artifact struct {
	Kind   ArtifactKind `json:"kind"`
	Path   string       `json:"path"`
	Size   int64        `json:"size"`
	SHA256 string       `json:"sha256"`
}
