package domain

// Variant selects one of the pretrained segmentation model sizes. The set is
// closed: every variant maps to exactly one checkpoint URL and one export
// configuration, and there is no default or fallback.
type Variant string

const (
	VariantViTB Variant = "vit_b"
	VariantViTL Variant = "vit_l"
	VariantViTH Variant = "vit_h"
)

// VariantSpec describes where a variant's pretrained checkpoint lives and how
// the export scripts must be parameterized for it.
type VariantSpec struct {
	Variant       Variant
	CheckpointURL string
	// CheckpointSHA256 is the expected hex digest of the checkpoint file.
	// Empty means the download is accepted unverified (the upstream
	// distribution publishes no digests); a variant manifest can supply one.
	CheckpointSHA256 string
	// ModelType is passed verbatim to both export scripts as the
	// --model-type argument.
	ModelType string
}

var variantSpecs = map[Variant]VariantSpec{
	VariantViTB: {
		Variant:       VariantViTB,
		CheckpointURL: "https://dl.fbaipublicfiles.com/segment_anything/sam_vit_b_01ec64.pth",
		ModelType:     "vit_b",
	},
	VariantViTL: {
		Variant:       VariantViTL,
		CheckpointURL: "https://dl.fbaipublicfiles.com/segment_anything/sam_vit_l_0b3195.pth",
		ModelType:     "vit_l",
	},
	VariantViTH: {
		Variant:       VariantViTH,
		CheckpointURL: "https://dl.fbaipublicfiles.com/segment_anything/sam_vit_h_4b8939.pth",
		ModelType:     "vit_h",
	},
}

// ParseVariant validates a raw variant value. Unknown values are rejected
// here, before any checkpoint fetch is attempted.
func ParseVariant(raw string) (Variant, error) {
	if raw == "" {
		return "", ErrMissingVariant
	}
	v := Variant(raw)
	if _, ok := variantSpecs[v]; !ok {
		return "", ErrUnknownVariant
	}
	return v, nil
}

// Spec returns the checkpoint and export configuration for a variant.
func (v Variant) Spec() (VariantSpec, error) {
	spec, ok := variantSpecs[v]
	if !ok {
		return VariantSpec{}, ErrUnknownVariant
	}
	return spec, nil
}

// Variants lists the supported variants in a stable order.
func Variants() []Variant {
	return []Variant{VariantViTB, VariantViTL, VariantViTH}
}

// VariantSpecs lists the built-in specs in the same order as Variants.
func VariantSpecs() []VariantSpec {
	variants := Variants()
	specs := make([]VariantSpec, 0, len(variants))
	for _, v := range variants {
		specs = append(specs, variantSpecs[v])
	}
	return specs
}

// VariantOverride carries per-variant fields a manifest file may replace.
// Nil fields keep the built-in value.
type VariantOverride struct {
	CheckpointURL    *string
	CheckpointSHA256 *string
}

// ApplyOverride returns the spec with manifest overrides applied.
func (s VariantSpec) ApplyOverride(o VariantOverride) VariantSpec {
	if o.CheckpointURL != nil {
		s.CheckpointURL = *o.CheckpointURL
	}
	if o.CheckpointSHA256 != nil {
		s.CheckpointSHA256 = *o.CheckpointSHA256
	}
	return s
}
