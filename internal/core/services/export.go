package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// ExportService runs the variant-parameterized export stage: validate the
// variant, download its checkpoint, then invoke the decoder and encoder
// export scripts. The sequence is strictly linear; the first failing step
// aborts the run and nothing downstream ever sees a partial output.
type ExportService struct {
	fetcher   ports.CheckpointFetcher
	exporter  ports.ModelExporter
	overrides map[domain.Variant]domain.VariantOverride
}

func NewExportService(fetcher ports.CheckpointFetcher, exporter ports.ModelExporter, overrides map[domain.Variant]domain.VariantOverride) *ExportService {
	return &ExportService{fetcher: fetcher, exporter: exporter, overrides: overrides}
}

// ExportResult reports the artifacts of one export run.
type ExportResult struct {
	Variant        domain.Variant
	Spec           domain.VariantSpec
	CheckpointPath string
	Encoder        domain.Artifact
	Decoder        domain.Artifact
}

// Artifacts returns the result's artifacts in store order.
func (r *ExportResult) Artifacts() []domain.Artifact {
	return []domain.Artifact{r.Encoder, r.Decoder}
}

// Run executes the export stage for rawVariant. workDir receives the
// downloaded checkpoint, outputDir the two ONNX files. The variant is
// validated before anything touches the network.
func (s *ExportService) Run(ctx context.Context, rawVariant, workDir, outputDir string) (*ExportResult, error) {
	variant, err := domain.ParseVariant(rawVariant)
	if err != nil {
		return nil, err
	}
	spec, err := variant.Spec()
	if err != nil {
		return nil, err
	}
	if o, ok := s.overrides[variant]; ok {
		spec = spec.ApplyOverride(o)
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	checkpointPath := filepath.Join(workDir, string(variant)+".pth")
	log.WithFields(log.Fields{
		"variant": variant,
		"url":     spec.CheckpointURL,
	}).Info("fetching checkpoint")
	if err := s.fetcher.Fetch(ctx, spec, checkpointPath); err != nil {
		return nil, fmt.Errorf("fetch checkpoint: %w", err)
	}

	result := &ExportResult{
		Variant:        variant,
		Spec:           spec,
		CheckpointPath: checkpointPath,
	}

	// Decoder first, then encoder, mirroring the build recipe this pipeline
	// replaces. The two invocations are independent but never concurrent.
	for _, kind := range []domain.ArtifactKind{domain.ArtifactDecoder, domain.ArtifactEncoder} {
		outPath := filepath.Join(outputDir, kind.FileName())
		log.WithFields(log.Fields{
			"variant": variant,
			"kind":    kind,
			"output":  outPath,
		}).Info("running export")

		err := s.exporter.Export(ctx, ports.ExportRequest{
			Kind:           kind,
			CheckpointPath: checkpointPath,
			ModelType:      spec.ModelType,
			OutputPath:     outPath,
		})
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", kind, err)
		}

		artifact, err := inspectArtifact(kind, outPath)
		if err != nil {
			return nil, err
		}
		switch kind {
		case domain.ArtifactEncoder:
			result.Encoder = artifact
		case domain.ArtifactDecoder:
			result.Decoder = artifact
		}
	}

	return result, nil
}

// inspectArtifact checks the artifact exists and is non-empty, and records
// its size and digest.
func inspectArtifact(kind domain.ArtifactKind, path string) (domain.Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Artifact{}, fmt.Errorf("%w: %s", domain.ErrArtifactAbsent, path)
		}
		return domain.Artifact{}, fmt.Errorf("stat artifact: %w", err)
	}
	if info.Size() == 0 {
		return domain.Artifact{}, fmt.Errorf("%w: %s", domain.ErrArtifactEmpty, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return domain.Artifact{}, fmt.Errorf("hash artifact: %w", err)
	}

	return domain.Artifact{
		Kind:   kind,
		Path:   path,
		Size:   info.Size(),
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
