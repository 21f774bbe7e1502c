package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVariant(t *testing.T) {
	for _, raw := range []string{"vit_b", "vit_l", "vit_h"} {
		v, err := ParseVariant(raw)
		assert.NoError(t, err)
		assert.Equal(t, Variant(raw), v)
	}
}

func TestParseVariant_Unknown(t *testing.T) {
	_, err := ParseVariant("vit_tiny")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParseVariant_Empty(t *testing.T) {
	_, err := ParseVariant("")
	assert.ErrorIs(t, err, ErrMissingVariant)
}

func TestVariantSpec_DistinctURLs(t *testing.T) {
	seen := map[string]Variant{}
	for _, v := range Variants() {
		spec, err := v.Spec()
		assert.NoError(t, err)
		assert.NotEmpty(t, spec.CheckpointURL)
		assert.Equal(t, string(v), spec.ModelType)

		prev, dup := seen[spec.CheckpointURL]
		assert.False(t, dup, "variants %s and %s share a checkpoint URL", prev, v)
		seen[spec.CheckpointURL] = v
	}
}

func TestVariantSpecs_MatchesVariantOrder(t *testing.T) {
	specs := VariantSpecs()
	variants := Variants()
	assert.Len(t, specs, len(variants))
	for i, spec := range specs {
		assert.Equal(t, variants[i], spec.Variant)
		assert.NotEmpty(t, spec.CheckpointURL)
	}
}

func TestVariantSpec_ApplyOverride(t *testing.T) {
	spec, err := VariantViTB.Spec()
	assert.NoError(t, err)

	url := "https://mirror.internal/vit_b.pth"
	overridden := spec.ApplyOverride(VariantOverride{CheckpointURL: &url})
	assert.Equal(t, url, overridden.CheckpointURL)
	// Untouched fields keep their built-in values.
	assert.Equal(t, spec.ModelType, overridden.ModelType)
	assert.Equal(t, spec.CheckpointSHA256, overridden.CheckpointSHA256)
}

func TestArtifactKind_StorePath(t *testing.T) {
	assert.Equal(t, "models/encoder/1/encoder.onnx", ArtifactEncoder.StorePath())
	assert.Equal(t, "models/decoder/1/decoder.onnx", ArtifactDecoder.StorePath())
	assert.Equal(t, "models/config.json", ServingConfigPath())
}
