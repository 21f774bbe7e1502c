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

type buildRepo struct {
	pool *pgxpool.Pool
}

func NewBuildRepository(pool *pgxpool.Pool) ports.BuildRepository {
	return &buildRepo{pool: pool}
}

func (r *buildRepo) Create(ctx context.Context, build *domain.Build) error {
	artifactsJSON, err := json.Marshal(build.Artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	query := `
		INSERT INTO build
			(id, created_at, updated_at, variant, status,
			 checkpoint_url, checkpoint_sha256, artifacts,
			 image_ref, image_digest, error, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.pool.Exec(ctx, query,
		build.ID, build.CreatedAt, build.UpdatedAt,
		string(build.Variant), string(build.Status),
		build.CheckpointURL, build.CheckpointSHA256, artifactsJSON,
		build.ImageRef, build.ImageDigest, build.Error, build.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("create build: %w", err)
	}
	return nil
}

func (r *buildRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Build, error) {
	query := `
		SELECT id, created_at, updated_at, variant, status,
			   checkpoint_url, checkpoint_sha256, artifacts,
			   image_ref, image_digest, error, finished_at
		FROM build
		WHERE id = $1
	`
	b, err := scanBuild(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBuildNotFound
		}
		return nil, fmt.Errorf("get build by id: %w", err)
	}
	return b, nil
}

func (r *buildRepo) Update(ctx context.Context, build *domain.Build) error {
	artifactsJSON, err := json.Marshal(build.Artifacts)
	if err != nil {
		return fmt.Errorf("marshal artifacts: %w", err)
	}

	query := `
		UPDATE build
		SET updated_at=$1, status=$2, checkpoint_url=$3, checkpoint_sha256=$4,
			artifacts=$5, image_ref=$6, image_digest=$7, error=$8, finished_at=$9
		WHERE id = $10
	`
	tag, err := r.pool.Exec(ctx, query,
		build.UpdatedAt, string(build.Status),
		build.CheckpointURL, build.CheckpointSHA256, artifactsJSON,
		build.ImageRef, build.ImageDigest, build.Error, build.FinishedAt,
		build.ID,
	)
	if err != nil {
		return fmt.Errorf("update build: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBuildNotFound
	}
	return nil
}

func (r *buildRepo) List(ctx context.Context, filter ports.BuildListFilter) ([]*domain.Build, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.Variant != "" {
		where += fmt.Sprintf(" AND variant = $%d", idx)
		args = append(args, string(filter.Variant))
		idx++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, string(filter.Status))
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM build " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count builds: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, created_at, updated_at, variant, status,
			   checkpoint_url, checkpoint_sha256, artifacts,
			   image_ref, image_digest, error, finished_at
		FROM build %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	var builds []*domain.Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list builds: %w", err)
	}
	return builds, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBuild(row rowScanner) (*domain.Build, error) {
	var (
		b             domain.Build
		variant       string
		status        string
		artifactsJSON []byte
	)
	err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UpdatedAt, &variant, &status,
		&b.CheckpointURL, &b.CheckpointSHA256, &artifactsJSON,
		&b.ImageRef, &b.ImageDigest, &b.Error, &b.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Variant = domain.Variant(variant)
	b.Status = domain.BuildStatus(status)
	if len(artifactsJSON) > 0 {
		if err := json.Unmarshal(artifactsJSON, &b.Artifacts); err != nil {
			return nil, fmt.Errorf("unmarshal artifacts: %w", err)
		}
	}
	return &b, nil
}
