package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-day format used in natural keys.
const DateLayout = "2006-01-02"

// ---------------------------------------------------------------------------
// Canonical row types
// ---------------------------------------------------------------------------

// AdPerformanceRow is one advertising line item for one calendar day.
// Natural key: (date, platform, campaign, adset, ad), scoped by tenant.
type AdPerformanceRow struct {
	Date          time.Time
	Platform      string
	CampaignID    string
	CampaignName  string
	AdsetID       string
	AdsetName     string
	AdID          string
	AdName        string
	Spend         decimal.Decimal
	Impressions   int64
	Clicks        int64
	Purchases     int64
	PurchaseValue decimal.Decimal
	Reach         int64
	Frequency     decimal.Decimal
}

// Key returns the natural key of the row.
func (r AdPerformanceRow) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", r.Date.Format(DateLayout), r.Platform, r.CampaignID, r.AdsetID, r.AdID)
}

// DerivePurchaseValue fills PurchaseValue from a source-reported ROAS when
// the source does not carry raw conversion value.
func (r *AdPerformanceRow) DerivePurchaseValue(roas decimal.Decimal) {
	r.PurchaseValue = roas.Mul(r.Spend).Round(2)
}

// InventorySnapshotRow is one SKU's stock position on one snapshot date.
// Natural key: (snapshot_date, sku).
type InventorySnapshotRow struct {
	SnapshotDate time.Time
	SKU          string
	OnHand       int64
	Committed    int64
	Available    int64
}

// Key returns the natural key of the row.
func (r InventorySnapshotRow) Key() string {
	return fmt.Sprintf("%s|%s", r.SnapshotDate.Format(DateLayout), r.SKU)
}

// DailyAnalyticsRow is one calendar day of site analytics.
// Natural key: date.
type DailyAnalyticsRow struct {
	Date            time.Time
	Sessions        int64
	Pageviews       int64
	ProductViews    int64
	AddToCart       int64
	CheckoutStarted int64
	Purchases       int64
	BounceRate      decimal.Decimal
	OrganicSessions int64
	PaidSessions    int64
	DirectSessions  int64
}

// Key returns the natural key of the row.
func (r DailyAnalyticsRow) Key() string {
	return r.Date.Format(DateLayout)
}

// NormalizeEmail canonicalizes a customer email. Repeat-customer flags and
// lifecycle summaries group orders by exact email equality, so every path
// that builds an OrderRow must store the same form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// OrderRow is one checkout event pulled from the storefront or delivered
// by webhook. Natural key: external order id.
type OrderRow struct {
	ExternalID      string
	OrderedAt       time.Time
	Total           decimal.Decimal
	Currency        string
	Email           string
	FinancialStatus string
}

// Key returns the natural key of the row.
func (r OrderRow) Key() string {
	return r.ExternalID
}

// ProductRow is a SKU master record merging catalog, logistics and pricing
// attributes. Natural key: sku.
type ProductRow struct {
	SKU      string
	Name     string
	Category string
	Vendor   string
	Barcode  string
	Cost     decimal.Decimal
	Price    decimal.Decimal
	WeightKg decimal.Decimal
	HSCode   string
	Origin   string
	Status   string
}

// Key returns the natural key of the row.
func (r ProductRow) Key() string {
	return r.SKU
}
