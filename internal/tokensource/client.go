package tokensource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/config"
)

// HealthGate probes the aggregation backend's liveness endpoint before a
// discovery cycle. Unreachable is a normal condition, not an error worth
// propagating: the cycle is skipped and retried on the next tick.
type HealthGate struct {
	HTTP *http.Client
	URL  string
}

func NewHealthGate(cfg config.HealthGateConfig) *HealthGate {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HealthGate{
		HTTP: &http.Client{Timeout: timeout},
		URL:  strings.TrimRight(strings.TrimSpace(cfg.URL), "/") + "/api/health",
	}
}

func (g *HealthGate) Available(ctx context.Context) bool {
	if g == nil || strings.TrimSpace(g.URL) == "/api/health" {
		// No gate configured; treat as available.
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL, nil)
	if err != nil {
		return false
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func httpClient(cfg config.SourceConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func capLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
