package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

type regressionRepo struct {
	pool *pgxpool.Pool
}

func NewRegressionRepository(pool *pgxpool.Pool) ports.RegressionRepository {
	return &regressionRepo{pool: pool}
}

func (r *regressionRepo) Create(ctx context.Context, run *domain.RegressionRun) error {
	matrixJSON, err := json.Marshal(run.Matrix)
	if err != nil {
		return fmt.Errorf("marshal matrix: %w", err)
	}
	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `
		INSERT INTO regression_run
			(id, started_at, finished_at, matrix, results, status, notified)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err = r.pool.Exec(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt,
		matrixJSON, resultsJSON, string(run.Status), run.Notified,
	)
	if err != nil {
		return fmt.Errorf("create regression run: %w", err)
	}
	return nil
}

func (r *regressionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RegressionRun, error) {
	query := `
		SELECT id, started_at, finished_at, matrix, results, status, notified
		FROM regression_run
		WHERE id = $1
	`
	run, err := scanRegressionRun(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegressionRunMissing
		}
		return nil, fmt.Errorf("get regression run by id: %w", err)
	}
	return run, nil
}

func (r *regressionRepo) List(ctx context.Context, limit, offset int) ([]*domain.RegressionRun, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM regression_run").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count regression runs: %w", err)
	}

	query := `
		SELECT id, started_at, finished_at, matrix, results, status, notified
		FROM regression_run
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list regression runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RegressionRun
	for rows.Next() {
		run, err := scanRegressionRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan regression run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list regression runs: %w", err)
	}
	return runs, total, nil
}

func scanRegressionRun(row rowScanner) (*domain.RegressionRun, error) {
	var (
		run         domain.RegressionRun
		status      string
		matrixJSON  []byte
		resultsJSON []byte
	)
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &matrixJSON, &resultsJSON, &status, &run.Notified)
	if err != nil {
		return nil, err
	}
	run.Status = domain.RunStatus(status)
	if err := json.Unmarshal(matrixJSON, &run.Matrix); err != nil {
		return nil, fmt.Errorf("unmarshal matrix: %w", err)
	}
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &run.Results); err != nil {
			return nil, fmt.Errorf("unmarshal results: %w", err)
		}
	}
	return &run, nil
}
