package checkpoint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/domain"
	"model-export-pipeline/internal/core/ports/output"
)

// Fetcher downloads pretrained checkpoints over HTTP(S). The download lands
// in a temp file next to the destination and is renamed into place only
// after the body is fully read (and verified, when the variant carries a
// digest), so a consumer never sees a partial checkpoint.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ ports.CheckpointFetcher = (*Fetcher)(nil)

func (f *Fetcher) Fetch(ctx context.Context, spec domain.VariantSpec, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.CheckpointURL, nil)
	if err != nil {
		return fmt.Errorf("create checkpoint request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("checkpoint request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checkpoint request: unexpected status %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("download checkpoint: %w", err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if spec.CheckpointSHA256 != "" && !strings.EqualFold(digest, spec.CheckpointSHA256) {
		return fmt.Errorf("%w: want %s, got %s", domain.ErrChecksumMismatch, spec.CheckpointSHA256, digest)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("finalize checkpoint: %w", err)
	}

	log.WithFields(log.Fields{
		"variant": spec.Variant,
		"bytes":   n,
		"sha256":  digest,
	}).Info("checkpoint downloaded")

	return nil
}
