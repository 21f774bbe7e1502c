package checkpoint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"model-export-pipeline/internal/core/domain"
)

func TestFetcher_Fetch(t *testing.T) {
	body := []byte("pretrained-weights")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "vit_b.pth")

	err := f.Fetch(context.Background(), domain.VariantSpec{
		Variant:       domain.VariantViTB,
		CheckpointURL: srv.URL,
	}, dest)
	assert.NoError(t, err)

	got, err := os.ReadFile(dest)
	assert.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestFetcher_Fetch_ChecksumVerified(t *testing.T) {
	body := []byte("pretrained-weights")
	sum := sha256.Sum256(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "vit_b.pth")

	err := f.Fetch(context.Background(), domain.VariantSpec{
		Variant:          domain.VariantViTB,
		CheckpointURL:    srv.URL,
		CheckpointSHA256: hex.EncodeToString(sum[:]),
	}, dest)
	assert.NoError(t, err)
}

func TestFetcher_Fetch_ChecksumMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered"))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "vit_b.pth")

	err := f.Fetch(context.Background(), domain.VariantSpec{
		Variant:          domain.VariantViTB,
		CheckpointURL:    srv.URL,
		CheckpointSHA256: "0000000000000000000000000000000000000000000000000000000000000000",
	}, dest)
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)

	// Nothing lands at the destination on failure.
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetcher_Fetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	dest := filepath.Join(t.TempDir(), "vit_b.pth")

	err := f.Fetch(context.Background(), domain.VariantSpec{
		Variant:       domain.VariantViTB,
		CheckpointURL: srv.URL,
	}, dest)
	assert.Error(t, err)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
