package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"model-export-pipeline/internal/core/ports/output"
)

// Notifier POSTs a JSON failure notice to a webhook. One call per failed
// run; delivery is best-effort with no retry.
type Notifier struct {
	httpClient *http.Client
	url        string
}

func NewNotifier(url string, timeout time.Duration) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) NotifyFailure(ctx context.Context, notice ports.FailureNotice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request: unexpected status %s", resp.Status)
	}

	log.WithField("run", notice.RunID).Info("failure notification delivered")
	return nil
}
