package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// RegressionService runs the scheduled test matrix. Every cell runs even
// after a failure so the report covers the whole grid; the aggregate result
// is FAILED iff at least one cell failed, and a failed run fires exactly one
// notification.
type RegressionService struct {
	runner   ports.CellRunner
	notifier ports.Notifier
	repo     ports.RegressionRepository
	matrix   domain.Matrix
}

func NewRegressionService(runner ports.CellRunner, notifier ports.Notifier, repo ports.RegressionRepository, matrix domain.Matrix) *RegressionService {
	return &RegressionService{runner: runner, notifier: notifier, repo: repo, matrix: matrix}
}

// Run executes the configured matrix once.
func (s *RegressionService) Run(ctx context.Context) (*domain.RegressionRun, error) {
	if err := s.matrix.Validate(); err != nil {
		return nil, err
	}

	run := &domain.RegressionRun{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Matrix:    s.matrix,
	}

	for _, cell := range s.matrix.Cells() {
		result, err := s.runner.Run(ctx, cell, s.matrix.Command)
		if err != nil {
			return nil, fmt.Errorf("run cell %s/%s: %w", cell.OS, cell.RuntimeVersion, err)
		}
		if !result.Passed {
			log.WithFields(log.Fields{
				"os":      cell.OS,
				"runtime": cell.RuntimeVersion,
			}).Warn("matrix cell failed")
		}
		run.Results = append(run.Results, result)
	}

	run.FinishedAt = time.Now()
	run.Status = domain.RunStatusPassed
	failed := run.FailedCells()
	if len(failed) > 0 {
		run.Status = domain.RunStatusFailed
	}

	if run.Status == domain.RunStatusFailed && s.notifier != nil {
		notice := ports.FailureNotice{
			RunID:       run.ID.String(),
			TotalCells:  len(run.Results),
			FailedCells: failed,
			Message:     fmt.Sprintf("regression run failed: %d/%d cells", len(failed), len(run.Results)),
		}
		if err := s.notifier.NotifyFailure(ctx, notice); err != nil {
			log.WithError(err).WithField("run", run.ID).Error("failure notification not delivered")
		} else {
			run.Notified = true
		}
	}

	if s.repo != nil {
		if err := s.repo.Create(ctx, run); err != nil {
			log.WithError(err).WithField("run", run.ID).Error("record regression run failed")
		}
	}

	return run, nil
}

// Get returns one recorded run.
func (s *RegressionService) Get(ctx context.Context, id uuid.UUID) (*domain.RegressionRun, error) {
	if s.repo == nil {
		return nil, domain.ErrRegressionRunMissing
	}
	return s.repo.GetByID(ctx, id)
}

// List returns recorded runs, newest first.
func (s *RegressionService) List(ctx context.Context, limit, offset int) ([]*domain.RegressionRun, int, error) {
	if s.repo == nil {
		return nil, 0, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, limit, offset)
}

// Schedule runs the matrix every interval until ctx is done. Used by the
// daemon; a zero interval means no schedule.
func (s *RegressionService) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				log.WithError(err).Error("scheduled regression run failed to execute")
			}
		}
	}
}
