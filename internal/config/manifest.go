package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"model-export-pipeline/internal/core/domain"
)

// manifestEntry is one variant's override block in the YAML manifest.
type manifestEntry struct {
	CheckpointURL    *string `yaml:"checkpoint_url"`
	CheckpointSHA256 *string `yaml:"checkpoint_sha256"`
}

type manifestFile struct {
	Variants map[string]manifestEntry `yaml:"variants"`
}

// LoadVariantManifest reads a YAML manifest of per-variant checkpoint
// overrides. Keys must name supported variants; anything else is rejected so
// a typo cannot silently leave a variant on its default URL.
func LoadVariantManifest(path string) (map[domain.Variant]domain.VariantOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read variant manifest: %w", err)
	}

	var mf manifestFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidManifest, err)
	}

	overrides := make(map[domain.Variant]domain.VariantOverride, len(mf.Variants))
	for key, entry := range mf.Variants {
		variant, err := domain.ParseVariant(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrManifestUnknownKey, key)
		}
		overrides[variant] = domain.VariantOverride{
			CheckpointURL:    entry.CheckpointURL,
			CheckpointSHA256: entry.CheckpointSHA256,
		}
	}
	return overrides, nil
}
