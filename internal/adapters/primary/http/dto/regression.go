package dto

import (
	"time"

	"github.com/google/uuid"

	"model-export-pipeline/internal/core/domain"
)

// ============================================================================
// Regression Run DTOs
// ============================================================================

type CellResultResponse struct {
	OS             string `json:"os"`
	RuntimeVersion string `json:"runtime_version"`
	Passed         bool   `json:"passed"`
	DurationMS     int64  `json:"duration_ms"`
	ArtifactPath   string `json:"artifact_path,omitempty"`
}

type RegressionRunResponse struct {
	ID         uuid.UUID            `json:"id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Status     string               `json:"status"`
	Notified   bool                 `json:"notified"`
	Results    []CellResultResponse `json:"results"`
}

type ListRegressionRunsResponse struct {
	Items      []RegressionRunResponse `json:"items"`
	Total      int                     `json:"total"`
	PageSize   int                     `json:"page_size"`
	NextOffset int                     `json:"next_offset"`
}

func ToRegressionRunResponse(run *domain.RegressionRun) RegressionRunResponse {
	resp := RegressionRunResponse{
		ID:         run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Status:     string(run.Status),
		Notified:   run.Notified,
	}
	for _, r := range run.Results {
		resp.Results = append(resp.Results, CellResultResponse{
			OS:             r.Cell.OS,
			RuntimeVersion: r.Cell.RuntimeVersion,
			Passed:         r.Passed,
			DurationMS:     r.Duration.Milliseconds(),
			ArtifactPath:   r.ArtifactPath,
		})
	}
	return resp
}
