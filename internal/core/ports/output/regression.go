package ports

import (
	"context"

	"model-export-pipeline/internal/core/domain"
)

// CellRunner executes one matrix cell's test command and writes its results
// artifact. A returned CellResult with Passed=false is not an error; the
// error return is reserved for the runner itself breaking.
type CellRunner interface {
	Run(ctx context.Context, cell domain.MatrixCell, command []string) (domain.CellResult, error)
}

// FailureNotice is the payload sent when a matrix run fails in aggregate.
type FailureNotice struct {
	RunID       string              `json:"run_id"`
	TotalCells  int                 `json:"total_cells"`
	FailedCells []domain.MatrixCell `json:"failed_cells"`
	Message     string              `json:"message"`
}

// Notifier delivers at most one notice per failed run.
type Notifier interface {
	NotifyFailure(ctx context.Context, notice FailureNotice) error
}
