package connector

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpstreamErrorClassification(t *testing.T) {
	auth := NewUpstreamError(ProviderMetaAds, 401, []byte(`{"error":"bad token"}`))
	assert.True(t, errors.Is(auth, ErrProviderAuthFailed))
	assert.False(t, errors.Is(auth, ErrProviderRateLimited))

	throttled := NewUpstreamError(ProviderSearchAds, 429, nil)
	assert.True(t, errors.Is(throttled, ErrProviderRateLimited))

	// Classification survives wrapping by the adapters.
	wrapped := fmt.Errorf("fetch day: %w", auth)
	assert.True(t, errors.Is(wrapped, ErrProviderAuthFailed))

	server := NewUpstreamError(ProviderShopfront, 500, nil)
	assert.False(t, errors.Is(server, ErrProviderAuthFailed))
	assert.False(t, errors.Is(server, ErrProviderRateLimited))
}

func TestSanitizeBodyTruncatesAndStripsNUL(t *testing.T) {
	body := []byte("a\x00b" + strings.Repeat("x", 3000))
	s := SanitizeBody(body)

	assert.NotContains(t, s, "\x00")
	assert.Len(t, s, 2000)
	assert.True(t, strings.HasPrefix(s, "ab"))
}
