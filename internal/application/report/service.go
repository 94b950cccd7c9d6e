// Package report rolls stored daily rows up into bucketed series with
// derived marketing metrics. Aggregation is read-only; all math runs on
// decimals and converts to float64 only when shaping the response.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// maxReportDays bounds one report query to roughly two years
const maxReportDays = 750

var thousand = decimal.NewFromInt(1000)

// Service computes bucketed cross-source reports.
type Service struct {
	aggregates report.AggregateRepository
	settings   report.SettingsRepository
	logger     *zap.Logger
}

// NewService creates a new report service
func NewService(aggregates report.AggregateRepository, settings report.SettingsRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{aggregates: aggregates, settings: settings, logger: logger}
}

// ---------------------------------------------------------------------------
// Response shapes
// ---------------------------------------------------------------------------

// Bucket is one time bucket joining advertising, commerce and analytics
// rollups. A bucket present in one source but absent in another is still
// emitted with the missing side zero-filled.
type Bucket struct {
	BucketStart time.Time `json:"bucketStart"`

	Spend         float64 `json:"spend"`
	Impressions   int64   `json:"impressions"`
	Clicks        int64   `json:"clicks"`
	AdPurchases   int64   `json:"adPurchases"`
	PurchaseValue float64 `json:"purchaseValue"`

	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`

	Sessions        int64 `json:"sessions"`
	ProductViews    int64 `json:"productViews"`
	AddToCart       int64 `json:"addToCart"`
	CheckoutStarted int64 `json:"checkoutStarted"`
	SitePurchases   int64 `json:"sitePurchases"`

	CTR             float64 `json:"ctr"`
	CPC             float64 `json:"cpc"`
	CPM             float64 `json:"cpm"`
	ROAS            float64 `json:"roas"`
	CostPerPurchase float64 `json:"costPerPurchase"`
	NetCashIn       float64 `json:"netCashIn"`
}

// Report is the bucketed series plus range totals.
type Report struct {
	From    time.Time    `json:"from"`
	To      time.Time    `json:"to"`
	Grain   report.Grain `json:"grain"`
	Buckets []Bucket     `json:"buckets"`
	Totals  Bucket       `json:"totals"`
}

// bucketAccum keeps exact decimal sums while buckets are being folded.
type bucketAccum struct {
	spend         decimal.Decimal
	impressions   int64
	clicks        int64
	adPurchases   int64
	purchaseValue decimal.Decimal

	orders  int64
	revenue decimal.Decimal

	sessions        int64
	productViews    int64
	addToCart       int64
	checkoutStarted int64
	sitePurchases   int64
}

// ---------------------------------------------------------------------------
// Report computation
// ---------------------------------------------------------------------------

// RunReport aggregates the tenant's stored rows over [from, to] into
// grain-sized buckets and derives the cross-source metrics.
func (s *Service) RunReport(ctx context.Context, tenantID uuid.UUID, from, to time.Time, grain report.Grain) (*Report, error) {
	if tenantID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}
	if !grain.IsValid() {
		return nil, report.ErrInvalidGrain
	}
	from = truncateDay(from)
	to = truncateDay(to)
	if to.Before(from) || to.Sub(from) > maxReportDays*24*time.Hour {
		return nil, shared.ErrInvalidInput
	}

	fees, err := s.settings.GetFeeSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	ads, err := s.aggregates.AdDailyAggregates(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	orders, err := s.aggregates.OrderDailyAggregates(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	analytics, err := s.aggregates.AnalyticsDailyAggregates(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	accums := map[time.Time]*bucketAccum{}
	bucket := func(d time.Time) *bucketAccum {
		key := grain.Truncate(d)
		a, ok := accums[key]
		if !ok {
			a = &bucketAccum{}
			accums[key] = a
		}
		return a
	}

	for _, row := range ads {
		a := bucket(row.Date)
		a.spend = a.spend.Add(row.Spend)
		a.impressions += row.Impressions
		a.clicks += row.Clicks
		a.adPurchases += row.Purchases
		a.purchaseValue = a.purchaseValue.Add(row.PurchaseValue)
	}
	for _, row := range orders {
		a := bucket(row.Date)
		a.orders += row.OrderCount
		a.revenue = a.revenue.Add(row.Revenue)
	}
	for _, row := range analytics {
		a := bucket(row.Date)
		a.sessions += row.Sessions
		a.productViews += row.ProductViews
		a.addToCart += row.AddToCart
		a.checkoutStarted += row.CheckoutStarted
		a.sitePurchases += row.Purchases
	}

	keys := make([]time.Time, 0, len(accums))
	for key := range accums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	result := &Report{From: from, To: to, Grain: grain, Buckets: make([]Bucket, 0, len(keys))}
	total := &bucketAccum{}
	for _, key := range keys {
		a := accums[key]
		result.Buckets = append(result.Buckets, shapeBucket(key, a, fees))

		total.spend = total.spend.Add(a.spend)
		total.impressions += a.impressions
		total.clicks += a.clicks
		total.adPurchases += a.adPurchases
		total.purchaseValue = total.purchaseValue.Add(a.purchaseValue)
		total.orders += a.orders
		total.revenue = total.revenue.Add(a.revenue)
		total.sessions += a.sessions
		total.productViews += a.productViews
		total.addToCart += a.addToCart
		total.checkoutStarted += a.checkoutStarted
		total.sitePurchases += a.sitePurchases
	}
	result.Totals = shapeBucket(from, total, fees)

	s.logger.Debug("report computed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("grain", string(grain)),
		zap.Int("buckets", len(result.Buckets)))
	return result, nil
}

// shapeBucket derives the guarded metrics and rounds currency for output.
// Every ratio emits 0 when its denominator is 0.
func shapeBucket(start time.Time, a *bucketAccum, fees report.FeeSettings) Bucket {
	impressions := decimal.NewFromInt(a.impressions)
	clicks := decimal.NewFromInt(a.clicks)
	purchases := decimal.NewFromInt(a.adPurchases)
	orderCount := decimal.NewFromInt(a.orders)

	netCashIn := a.revenue.
		Sub(fees.PlatformFeeRate.Mul(a.revenue)).
		Sub(fees.PerOrderFulfilmentFee.Mul(orderCount)).
		Sub(a.spend)

	return Bucket{
		BucketStart: start,

		Spend:         round2f(a.spend),
		Impressions:   a.impressions,
		Clicks:        a.clicks,
		AdPurchases:   a.adPurchases,
		PurchaseValue: round2f(a.purchaseValue),

		Orders:  a.orders,
		Revenue: round2f(a.revenue),

		Sessions:        a.sessions,
		ProductViews:    a.productViews,
		AddToCart:       a.addToCart,
		CheckoutStarted: a.checkoutStarted,
		SitePurchases:   a.sitePurchases,

		CTR:             ratio4f(clicks, impressions),
		CPC:             ratio2f(a.spend, clicks),
		CPM:             ratio2f(a.spend.Mul(thousand), impressions),
		ROAS:            ratio4f(a.purchaseValue, a.spend),
		CostPerPurchase: ratio2f(a.spend, purchases),
		NetCashIn:       round2f(netCashIn),
	}
}

// ---------------------------------------------------------------------------
// Decimal helpers
// ---------------------------------------------------------------------------

func truncateDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// safeDiv returns num/den, or 0 when den is 0.
func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

// round2f rounds half away from zero to 2 places at the output edge.
func round2f(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func ratio2f(num, den decimal.Decimal) float64 {
	return safeDiv(num, den).Round(2).InexactFloat64()
}

// ratio4f keeps 4 places for small rate metrics like ctr and roas.
func ratio4f(num, den decimal.Decimal) float64 {
	return safeDiv(num, den).Round(4).InexactFloat64()
}
