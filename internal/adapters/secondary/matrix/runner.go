package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// Runner executes one matrix cell as a local subprocess. The cell's
// coordinates are exposed to the command through MATRIX_OS and
// MATRIX_RUNTIME_VERSION, and the captured output is written to a per-cell
// results artifact. A non-zero exit marks the cell failed; it is not an
// error of the runner itself.
type Runner struct {
	artifactDir string
}

func NewRunner(artifactDir string) *Runner {
	return &Runner{artifactDir: artifactDir}
}

var _ ports.CellRunner = (*Runner)(nil)

type cellReport struct {
	Cell     domain.MatrixCell `json:"cell"`
	Passed   bool              `json:"passed"`
	Duration string            `json:"duration"`
	Output   string            `json:"output"`
}

func (r *Runner) Run(ctx context.Context, cell domain.MatrixCell, command []string) (domain.CellResult, error) {
	if len(command) == 0 {
		return domain.CellResult{}, domain.ErrEmptyMatrix
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Env = append(os.Environ(),
		"MATRIX_OS="+cell.OS,
		"MATRIX_RUNTIME_VERSION="+cell.RuntimeVersion,
	)

	start := time.Now()
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)

	passed := err == nil
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return domain.CellResult{}, fmt.Errorf("start cell command: %w", err)
		}
	}

	result := domain.CellResult{
		Cell:     cell,
		Passed:   passed,
		Duration: duration,
		Output:   string(out),
	}

	artifactPath, err := r.writeArtifact(result)
	if err != nil {
		return domain.CellResult{}, err
	}
	result.ArtifactPath = artifactPath

	log.WithFields(log.Fields{
		"os":      cell.OS,
		"runtime": cell.RuntimeVersion,
		"passed":  passed,
	}).Debug("matrix cell finished")

	return result, nil
}

func (r *Runner) writeArtifact(result domain.CellResult) (string, error) {
	if err := os.MkdirAll(r.artifactDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	name := fmt.Sprintf("results-%s-%s.json", result.Cell.OS, result.Cell.RuntimeVersion)
	path := filepath.Join(r.artifactDir, name)

	report := cellReport{
		Cell:     result.Cell,
		Passed:   result.Passed,
		Duration: result.Duration.String(),
		Output:   result.Output,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal cell report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write cell report: %w", err)
	}
	return path, nil
}
