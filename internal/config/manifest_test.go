package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"model-export-pipeline/internal/core/domain"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "variants.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadVariantManifest(t *testing.T) {
	path := writeManifest(t, `
variants:
  vit_b:
    checkpoint_url: https://mirror.internal/sam_vit_b.pth
    checkpoint_sha256: abc123
  vit_h:
    checkpoint_sha256: def456
`)

	overrides, err := LoadVariantManifest(path)
	assert.NoError(t, err)
	assert.Len(t, overrides, 2)

	b := overrides[domain.VariantViTB]
	assert.Equal(t, "https://mirror.internal/sam_vit_b.pth", *b.CheckpointURL)
	assert.Equal(t, "abc123", *b.CheckpointSHA256)

	h := overrides[domain.VariantViTH]
	assert.Nil(t, h.CheckpointURL)
	assert.Equal(t, "def456", *h.CheckpointSHA256)
}

func TestLoadVariantManifest_UnknownVariant(t *testing.T) {
	path := writeManifest(t, `
variants:
  vit_xxl:
    checkpoint_url: https://mirror.internal/huge.pth
`)

	_, err := LoadVariantManifest(path)
	assert.ErrorIs(t, err, domain.ErrManifestUnknownKey)
}

func TestLoadVariantManifest_InvalidYAML(t *testing.T) {
	path := writeManifest(t, "variants: [not a map")

	_, err := LoadVariantManifest(path)
	assert.ErrorIs(t, err, domain.ErrInvalidManifest)
}

func TestLoadVariantManifest_MissingFile(t *testing.T) {
	_, err := LoadVariantManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
