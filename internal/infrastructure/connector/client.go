// Package connector contains the HTTP adapters for the upstream
// providers. Each adapter turns one provider's wire format into the
// canonical ingestion rows; paging, credentials and error sanitization
// are handled here so the orchestrator never sees provider specifics.
package connector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/growthdeck/backend/internal/domain/connector"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

var (
	sharedClient     *http.Client
	sharedClientOnce sync.Once
)

// defaultClient returns the process-wide HTTP client for provider calls
func defaultClient(timeout time.Duration) *http.Client {
	sharedClientOnce.Do(func() {
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		sharedClient = &http.Client{Timeout: timeout}
	})
	return sharedClient
}

// Options configure adapter paging and transport behaviour
type Options struct {
	PageSize       int
	InterPageDelay time.Duration
	RequestTimeout time.Duration
	Client         *http.Client
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.Client == nil {
		o.Client = defaultClient(o.RequestTimeout)
	}
	return o
}

// doGet performs one GET against a provider endpoint. Error bodies are
// sanitized before they can reach logs or sync log details.
func doGet(ctx context.Context, client *http.Client, provider connector.ProviderCode, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", connector.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", provider, err)
	}

	if resp.StatusCode >= 400 {
		return nil, connector.NewUpstreamError(provider, resp.StatusCode, body)
	}
	return body, nil
}

// pauseBetweenPages sleeps the configured inter-page delay unless the
// context is cancelled first.
func pauseBetweenPages(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
