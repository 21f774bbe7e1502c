package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

func TestNotifier_NotifyFailure(t *testing.T) {
	var calls atomic.Int32
	var received ports.FailureNotice

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 5*time.Second)
	err := n.NotifyFailure(context.Background(), ports.FailureNotice{
		RunID:       "run-1",
		TotalCells:  12,
		FailedCells: []domain.MatrixCell{{OS: "windows-2022", RuntimeVersion: "3.12"}},
		Message:     "regression run failed: 1/12 cells",
	})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "run-1", received.RunID)
	assert.Equal(t, 12, received.TotalCells)
}

func TestNotifier_NotifyFailure_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 5*time.Second)
	err := n.NotifyFailure(context.Background(), ports.FailureNotice{RunID: "run-2"})
	assert.Error(t, err)
}
