package connector

import (
	"errors"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Provider Errors
// ---------------------------------------------------------------------------

var (
	ErrProviderNotConfigured   = errors.New("connector: provider not configured")
	ErrProviderNotEnabled      = errors.New("connector: provider not enabled for tenant")
	ErrProviderUnavailable     = errors.New("connector: provider temporarily unavailable")
	ErrProviderInvalidResponse = errors.New("connector: invalid provider response")
	ErrProviderAuthFailed      = errors.New("connector: provider authentication failed")
	ErrProviderRateLimited     = errors.New("connector: provider rate limited")
)

// ---------------------------------------------------------------------------
// ProviderCode represents an external data provider
// ---------------------------------------------------------------------------

// ProviderCode identifies an external data provider.
type ProviderCode string

const (
	// ProviderShopfront is the storefront commerce platform (orders, products).
	ProviderShopfront ProviderCode = "SHOPFRONT"
	// ProviderMetaAds is the social advertising platform.
	ProviderMetaAds ProviderCode = "METAADS"
	// ProviderSearchAds is the search advertising platform.
	ProviderSearchAds ProviderCode = "SEARCHADS"
	// ProviderSitePulse is the product analytics platform.
	ProviderSitePulse ProviderCode = "SITEPULSE"
	// ProviderFulfilbay is the fulfillment/3PL platform.
	ProviderFulfilbay ProviderCode = "FULFILBAY"
)

// IsValid returns true if the provider code is known
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderShopfront, ProviderMetaAds, ProviderSearchAds,
		ProviderSitePulse, ProviderFulfilbay:
		return true
	default:
		return false
	}
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// ParseProviderCode maps a URL/route segment to a ProviderCode.
func ParseProviderCode(s string) (ProviderCode, bool) {
	switch s {
	case "shopfront":
		return ProviderShopfront, true
	case "metaads":
		return ProviderMetaAds, true
	case "searchads":
		return ProviderSearchAds, true
	case "sitepulse":
		return ProviderSitePulse, true
	case "fulfilbay":
		return ProviderFulfilbay, true
	default:
		return "", false
	}
}

// ---------------------------------------------------------------------------
// Connection
// ---------------------------------------------------------------------------

// Connection is the per-tenant credential snapshot for one provider.
// It is owned and mutated by the settings subsystem; the sync core only
// reads it at job start.
type Connection struct {
	TenantID    uuid.UUID
	Provider    ProviderCode
	Host        string
	AccessToken string
	AppSecret   string
	Enabled     bool
}

// Validate checks the connection is usable for an authenticated pull.
func (c *Connection) Validate() error {
	if !c.Enabled {
		return ErrProviderNotEnabled
	}
	if c.Host == "" || c.AccessToken == "" {
		return ErrProviderNotConfigured
	}
	return nil
}
