package domain

import (
	"time"

	"github.com/google/uuid"
)

// Matrix describes a regression test grid: one cell per
// {operating system, runtime version} pair, each running the same command.
type Matrix struct {
	OperatingSystems []string `json:"operating_systems"`
	RuntimeVersions  []string `json:"runtime_versions"`
	Command          []string `json:"command"`
}

// Cells expands the matrix into its cell coordinates, OS-major order.
func (m Matrix) Cells() []MatrixCell {
	cells := make([]MatrixCell, 0, len(m.OperatingSystems)*len(m.RuntimeVersions))
	for _, os := range m.OperatingSystems {
		for _, rv := range m.RuntimeVersions {
			cells = append(cells, MatrixCell{OS: os, RuntimeVersion: rv})
		}
	}
	return cells
}

// Validate rejects matrices that expand to zero cells or have no command.
func (m Matrix) Validate() error {
	if len(m.OperatingSystems) == 0 || len(m.RuntimeVersions) == 0 || len(m.Command) == 0 {
		return ErrEmptyMatrix
	}
	return nil
}

// MatrixCell is one coordinate of the grid.
type MatrixCell struct {
	OS             string `json:"os"`
	RuntimeVersion string `json:"runtime_version"`
}

// CellResult is the outcome of a single cell: its exit status plus the path
// of the uploaded results artifact.
type CellResult struct {
	Cell         MatrixCell    `json:"cell"`
	Passed       bool          `json:"passed"`
	Duration     time.Duration `json:"duration"`
	ArtifactPath string        `json:"artifact_path,omitempty"`
	Output       string        `json:"output,omitempty"`
}

type RunStatus string

const (
	RunStatusPassed RunStatus = "PASSED"
	RunStatusFailed RunStatus = "FAILED"
)

// RegressionRun aggregates a full matrix execution. The run fails iff at
// least one cell fails; a failed run triggers exactly one notification.
type RegressionRun struct {
	ID         uuid.UUID    `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Matrix     Matrix       `json:"matrix"`
	Results    []CellResult `json:"results"`
	Status     RunStatus    `json:"status"`
	Notified   bool         `json:"notified"`
}

// FailedCells returns the coordinates of all failing cells.
func (r *RegressionRun) FailedCells() []MatrixCell {
	var failed []MatrixCell
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res.Cell)
		}
	}
	return failed
}
