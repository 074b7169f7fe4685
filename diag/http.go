package diag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPResult summarizes one GET probe.
type HTTPResult struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency"`
}

// HTTPProbe performs a single GET against url bounded by timeout and
// reports the status line plus time to complete the response headers.
func HTTPProbe(ctx context.Context, url string, timeout time.Duration) (*HTTPResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	latency := time.Since(start)
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()

	return &HTTPResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Latency:    latency,
	}, nil
}
