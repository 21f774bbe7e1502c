package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
	"model-export-pipeline/internal/testutil"
)

// writeFileOnFetch makes the fetcher mock materialize a checkpoint file the
// way the real adapter would.
func writeFileOnFetch(t *testing.T, fetcher *testutil.MockCheckpointFetcher, content string) {
	t.Helper()
	fetcher.On("Fetch", mock.Anything, mock.AnythingOfType("domain.VariantSpec"), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			dest := args.String(2)
			assert.NoError(t, os.WriteFile(dest, []byte(content), 0o644))
		}).
		Return(nil)
}

// writeFileOnExport makes the exporter mock produce an output artifact.
func writeFileOnExport(t *testing.T, exporter *testutil.MockModelExporter, content string) {
	t.Helper()
	exporter.On("Export", mock.Anything, mock.AnythingOfType("ports.ExportRequest")).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(ports.ExportRequest)
			assert.NoError(t, os.WriteFile(req.OutputPath, []byte(content), 0o644))
		}).
		Return(nil)
}

func TestExportService_Run_AllVariants(t *testing.T) {
	for _, variant := range domain.Variants() {
		t.Run(string(variant), func(t *testing.T) {
			fetcher := new(testutil.MockCheckpointFetcher)
			exporter := new(testutil.MockModelExporter)
			svc := NewExportService(fetcher, exporter, nil)

			writeFileOnFetch(t, fetcher, "weights")
			writeFileOnExport(t, exporter, "graph")

			dir := t.TempDir()
			outDir := filepath.Join(dir, "out")

			result, err := svc.Run(context.Background(), string(variant), dir, outDir)
			assert.NoError(t, err)
			assert.Equal(t, variant, result.Variant)

			// Exactly two non-empty files at the fixed output paths.
			for _, name := range []string{domain.EncoderFileName, domain.DecoderFileName} {
				info, err := os.Stat(filepath.Join(outDir, name))
				assert.NoError(t, err)
				assert.Greater(t, info.Size(), int64(0))
			}
			assert.Equal(t, filepath.Join(outDir, "encoder.onnx"), result.Encoder.Path)
			assert.Equal(t, filepath.Join(outDir, "decoder.onnx"), result.Decoder.Path)
			assert.NotEmpty(t, result.Encoder.SHA256)

			exporter.AssertNumberOfCalls(t, "Export", 2)
		})
	}
}

func TestExportService_Run_ViTBScenario(t *testing.T) {
	fetcher := new(testutil.MockCheckpointFetcher)
	exporter := new(testutil.MockModelExporter)
	svc := NewExportService(fetcher, exporter, nil)

	writeFileOnFetch(t, fetcher, "weights")
	writeFileOnExport(t, exporter, "graph")

	dir := t.TempDir()
	_, err := svc.Run(context.Background(), "vit_b", dir, filepath.Join(dir, "out"))
	assert.NoError(t, err)

	// The vit_b-specific URL was fetched.
	spec := fetcher.Calls[0].Arguments.Get(1).(domain.VariantSpec)
	assert.Equal(t, "https://dl.fbaipublicfiles.com/segment_anything/sam_vit_b_01ec64.pth", spec.CheckpointURL)

	// Both export calls reference vit_b as the model type.
	kinds := map[domain.ArtifactKind]bool{}
	for _, call := range exporter.Calls {
		req := call.Arguments.Get(1).(ports.ExportRequest)
		assert.Equal(t, "vit_b", req.ModelType)
		kinds[req.Kind] = true
	}
	assert.True(t, kinds[domain.ArtifactEncoder])
	assert.True(t, kinds[domain.ArtifactDecoder])
}

func TestExportService_Run_UnknownVariant_NoFetch(t *testing.T) {
	fetcher := new(testutil.MockCheckpointFetcher)
	exporter := new(testutil.MockModelExporter)
	svc := NewExportService(fetcher, exporter, nil)

	dir := t.TempDir()
	_, err := svc.Run(context.Background(), "vit_xxl", dir, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, domain.ErrUnknownVariant)

	// Fail-fast: the variant is rejected before any network fetch.
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
	exporter.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}

func TestExportService_Run_MissingVariant(t *testing.T) {
	svc := NewExportService(new(testutil.MockCheckpointFetcher), new(testutil.MockModelExporter), nil)

	dir := t.TempDir()
	_, err := svc.Run(context.Background(), "", dir, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, domain.ErrMissingVariant)
}

func TestExportService_Run_EmptyArtifact(t *testing.T) {
	fetcher := new(testutil.MockCheckpointFetcher)
	exporter := new(testutil.MockModelExporter)
	svc := NewExportService(fetcher, exporter, nil)

	writeFileOnFetch(t, fetcher, "weights")
	writeFileOnExport(t, exporter, "")

	dir := t.TempDir()
	_, err := svc.Run(context.Background(), "vit_l", dir, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, domain.ErrArtifactEmpty)
}

func TestExportService_Run_ExporterWroteNothing(t *testing.T) {
	fetcher := new(testutil.MockCheckpointFetcher)
	exporter := new(testutil.MockModelExporter)
	svc := NewExportService(fetcher, exporter, nil)

	writeFileOnFetch(t, fetcher, "weights")
	// Exporter claims success but never writes the output file.
	exporter.On("Export", mock.Anything, mock.AnythingOfType("ports.ExportRequest")).Return(nil)

	dir := t.TempDir()
	_, err := svc.Run(context.Background(), "vit_h", dir, filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, domain.ErrArtifactAbsent)
}

func TestExportService_Run_ManifestOverride(t *testing.T) {
	fetcher := new(testutil.MockCheckpointFetcher)
	exporter := new(testutil.MockModelExporter)

	url := "https://mirror.internal/sam_vit_b.pth"
	sum := "abc123"
	svc := NewExportService(fetcher, exporter, map[domain.Variant]domain.VariantOverride{
		domain.VariantViTB: {CheckpointURL: &url, CheckpointSHA256: &sum},
	})

	writeFileOnFetch(t, fetcher, "weights")
	writeFileOnExport(t, exporter, "graph")

	dir := t.TempDir()
	result, err := svc.Run(context.Background(), "vit_b", dir, filepath.Join(dir, "out"))
	assert.NoError(t, err)
	assert.Equal(t, url, result.Spec.CheckpointURL)
	assert.Equal(t, sum, result.Spec.CheckpointSHA256)
}
