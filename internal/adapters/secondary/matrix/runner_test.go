package matrix

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"model-export-pipeline/internal/core/domain"
)

func TestRunner_Run_Pass(t *testing.T) {
	r := NewRunner(t.TempDir())
	cell := domain.MatrixCell{OS: "ubuntu-22.04", RuntimeVersion: "3.11"}

	result, err := r.Run(context.Background(), cell, []string{"sh", "-c", "echo ok"})
	assert.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, cell, result.Cell)
	assert.Contains(t, result.Output, "ok")
	assert.FileExists(t, result.ArtifactPath)
}

func TestRunner_Run_Fail(t *testing.T) {
	r := NewRunner(t.TempDir())
	cell := domain.MatrixCell{OS: "ubuntu-22.04", RuntimeVersion: "3.9"}

	result, err := r.Run(context.Background(), cell, []string{"sh", "-c", "exit 1"})
	assert.NoError(t, err)
	assert.False(t, result.Passed)
	assert.FileExists(t, result.ArtifactPath)
}

func TestRunner_Run_CellEnv(t *testing.T) {
	r := NewRunner(t.TempDir())
	cell := domain.MatrixCell{OS: "macos-14", RuntimeVersion: "3.12"}

	result, err := r.Run(context.Background(), cell, []string{"sh", "-c", "echo $MATRIX_OS/$MATRIX_RUNTIME_VERSION"})
	assert.NoError(t, err)
	assert.Contains(t, result.Output, "macos-14/3.12")
}

func TestRunner_Run_ArtifactContents(t *testing.T) {
	r := NewRunner(t.TempDir())
	cell := domain.MatrixCell{OS: "windows-2022", RuntimeVersion: "3.10"}

	result, err := r.Run(context.Background(), cell, []string{"sh", "-c", "exit 1"})
	assert.NoError(t, err)

	data, err := os.ReadFile(result.ArtifactPath)
	assert.NoError(t, err)

	var report cellReport
	assert.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, cell, report.Cell)
	assert.False(t, report.Passed)
}

func TestRunner_Run_CommandMissing(t *testing.T) {
	r := NewRunner(t.TempDir())

	_, err := r.Run(context.Background(), domain.MatrixCell{OS: "a", RuntimeVersion: "b"}, []string{"/nonexistent-command-xyz"})
	assert.Error(t, err)
}
