package connector

import (
	"fmt"
	"strings"
)

// maxErrorBodyBytes bounds the provider error body kept for logs and
// sync log entries.
const maxErrorBodyBytes = 2000

// UpstreamError carries the HTTP status and a sanitized slice of the
// provider's error body. Raw bodies are never stored or returned verbatim.
type UpstreamError struct {
	Provider ProviderCode
	Status   int
	Body     string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream HTTP %d", strings.ToLower(string(e.Provider)), e.Status)
	}
	return fmt.Sprintf("%s: upstream HTTP %d: %s", strings.ToLower(string(e.Provider)), e.Status, e.Body)
}

// NewUpstreamError builds an UpstreamError with the body truncated and
// stripped of NUL bytes.
func NewUpstreamError(provider ProviderCode, status int, body []byte) *UpstreamError {
	return &UpstreamError{
		Provider: provider,
		Status:   status,
		Body:     SanitizeBody(body),
	}
}

// IsAuth reports whether the status indicates a credential problem, which
// is non-retryable within a job.
func (e *UpstreamError) IsAuth() bool {
	return e.Status == 401 || e.Status == 403
}

// Unwrap classifies the failure so callers can branch with errors.Is:
// credential rejections surface ErrProviderAuthFailed and throttling
// surfaces ErrProviderRateLimited.
func (e *UpstreamError) Unwrap() error {
	switch {
	case e.IsAuth():
		return ErrProviderAuthFailed
	case e.Status == 429:
		return ErrProviderRateLimited
	default:
		return nil
	}
}

// SanitizeBody truncates a provider payload and strips NUL bytes so it is
// safe to persist and echo in responses.
func SanitizeBody(body []byte) string {
	s := strings.ReplaceAll(string(body), "\x00", "")
	if len(s) > maxErrorBodyBytes {
		s = s[:maxErrorBodyBytes]
	}
	return s
}
