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

func stagingInputs(t *testing.T) (encoderPath, decoderPath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	encoderPath = filepath.Join(dir, "encoder.onnx")
	decoderPath = filepath.Join(dir, "decoder.onnx")
	configPath = filepath.Join(dir, "config.json")
	assert.NoError(t, os.WriteFile(encoderPath, []byte("encoder-graph"), 0o644))
	assert.NoError(t, os.WriteFile(decoderPath, []byte("decoder-graph"), 0o644))
	assert.NoError(t, os.WriteFile(configPath, []byte(`{"model_config_list":[]}`+"\n"), 0o644))
	return
}

func TestPackagingService_Stage_Layout(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	svc := NewPackagingService(new(testutil.MockImagePackager), configPath, "base:latest", "repo/serving", "", nil)

	storeDir := t.TempDir()
	err := svc.Stage(encoderPath, decoderPath, storeDir)
	assert.NoError(t, err)

	encoder, err := os.ReadFile(filepath.Join(storeDir, "models", "encoder", "1", "encoder.onnx"))
	assert.NoError(t, err)
	assert.Equal(t, "encoder-graph", string(encoder))

	decoder, err := os.ReadFile(filepath.Join(storeDir, "models", "decoder", "1", "decoder.onnx"))
	assert.NoError(t, err)
	assert.Equal(t, "decoder-graph", string(decoder))
}

func TestPackagingService_Stage_ConfigVerbatim(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	svc := NewPackagingService(new(testutil.MockImagePackager), configPath, "base:latest", "repo/serving", "", nil)

	storeDir := t.TempDir()
	assert.NoError(t, svc.Stage(encoderPath, decoderPath, storeDir))

	want, err := os.ReadFile(configPath)
	assert.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(storeDir, "models", "config.json"))
	assert.NoError(t, err)
	assert.Equal(t, want, got, "serving config must be byte-for-byte identical")
}

func TestPackagingService_Stage_MissingArtifact(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	svc := NewPackagingService(new(testutil.MockImagePackager), configPath, "base:latest", "repo/serving", "", nil)

	assert.NoError(t, os.Remove(decoderPath))

	err := svc.Stage(encoderPath, decoderPath, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrArtifactAbsent)
}

func TestPackagingService_Stage_EmptyArtifact(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	svc := NewPackagingService(new(testutil.MockImagePackager), configPath, "base:latest", "repo/serving", "", nil)

	assert.NoError(t, os.WriteFile(encoderPath, nil, 0o644))

	err := svc.Stage(encoderPath, decoderPath, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrArtifactEmpty)
}

func TestPackagingService_Stage_MissingServingConfig(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	svc := NewPackagingService(new(testutil.MockImagePackager), configPath, "base:latest", "repo/serving", "", nil)

	assert.NoError(t, os.Remove(configPath))

	err := svc.Stage(encoderPath, decoderPath, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrServingConfigAbsent)
}

func TestPackagingService_Run(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	packager := new(testutil.MockImagePackager)
	entrypoint := []string{"/ovms/bin/ovms", "--config_path", "/models/config.json"}
	svc := NewPackagingService(packager, configPath, "ovms:2024.0", "registry.local/serving/sam", "", entrypoint)

	packager.On("Package", mock.Anything, mock.AnythingOfType("ports.PackageRequest")).
		Return(&ports.PackageResult{Ref: "registry.local/serving/sam:vit_b", Digest: "sha256:deadbeef"}, nil)

	storeDir := t.TempDir()
	result, err := svc.Run(context.Background(), domain.VariantViTB, encoderPath, decoderPath, storeDir)
	assert.NoError(t, err)
	assert.Equal(t, "registry.local/serving/sam:vit_b", result.Ref)

	req := packager.Calls[0].Arguments.Get(1).(ports.PackageRequest)
	assert.Equal(t, storeDir, req.StoreDir)
	assert.Equal(t, "ovms:2024.0", req.BaseImageRef)
	assert.Equal(t, "registry.local/serving/sam:vit_b", req.TargetRef)
	assert.Equal(t, entrypoint, req.Entrypoint)
	assert.Empty(t, req.TarPath)
}

func TestPackagingService_Run_TarOutput(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	packager := new(testutil.MockImagePackager)
	svc := NewPackagingService(packager, configPath, "ovms:2024.0", "serving/sam", "/tmp/images", nil)

	packager.On("Package", mock.Anything, mock.AnythingOfType("ports.PackageRequest")).
		Return(&ports.PackageResult{Ref: "serving/sam:vit_h", Digest: "sha256:feed"}, nil)

	_, err := svc.Run(context.Background(), domain.VariantViTH, encoderPath, decoderPath, t.TempDir())
	assert.NoError(t, err)

	req := packager.Calls[0].Arguments.Get(1).(ports.PackageRequest)
	assert.Equal(t, filepath.Join("/tmp/images", "serving-vit_h.tar"), req.TarPath)
}

func TestPackagingService_Run_StageFailureSkipsPackager(t *testing.T) {
	encoderPath, decoderPath, configPath := stagingInputs(t)
	packager := new(testutil.MockImagePackager)
	svc := NewPackagingService(packager, configPath, "ovms:2024.0", "serving/sam", "", nil)

	assert.NoError(t, os.Remove(encoderPath))

	_, err := svc.Run(context.Background(), domain.VariantViTB, encoderPath, decoderPath, t.TempDir())
	assert.ErrorIs(t, err, domain.ErrArtifactAbsent)
	packager.AssertNotCalled(t, "Package", mock.Anything, mock.Anything)
}
