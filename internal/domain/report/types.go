package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidGrain is returned for an unknown bucket grain.
var ErrInvalidGrain = errors.New("report: invalid grain")

// Grain is the time-bucket size used for aggregation.
type Grain string

const (
	GrainDay   Grain = "day"
	GrainWeek  Grain = "week"
	GrainMonth Grain = "month"
)

// IsValid returns true if the grain is known
func (g Grain) IsValid() bool {
	switch g {
	case GrainDay, GrainWeek, GrainMonth:
		return true
	default:
		return false
	}
}

// Truncate maps a date onto its bucket boundary: the day itself, the ISO
// Monday of its week, or the first of its month.
func (g Grain) Truncate(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case GrainWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case GrainMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

// ---------------------------------------------------------------------------
// Daily aggregates read back from the store
// ---------------------------------------------------------------------------

// AdDailyAggregate is the per-date rollup of ad performance rows.
type AdDailyAggregate struct {
	Date          time.Time
	Spend         decimal.Decimal
	Impressions   int64
	Clicks        int64
	Purchases     int64
	PurchaseValue decimal.Decimal
}

// OrderDailyAggregate is the per-date rollup of orders.
type OrderDailyAggregate struct {
	Date       time.Time
	OrderCount int64
	Revenue    decimal.Decimal
}

// AnalyticsDailyAggregate is the per-date site analytics rollup.
type AnalyticsDailyAggregate struct {
	Date            time.Time
	Sessions        int64
	ProductViews    int64
	AddToCart       int64
	CheckoutStarted int64
	Purchases       int64
}

// CustomerOrderSummary is one customer's order recency, derived from the
// orders table by email.
type CustomerOrderSummary struct {
	Email       string
	OrdersCount int64
	LastOrderAt time.Time
}

// AggregateRepository reads daily rollups for the aggregation engine.
type AggregateRepository interface {
	AdDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]AdDailyAggregate, error)
	OrderDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]OrderDailyAggregate, error)
	AnalyticsDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]AnalyticsDailyAggregate, error)
	CustomerOrderSummaries(ctx context.Context, tenantID uuid.UUID) ([]CustomerOrderSummary, error)
}

// ---------------------------------------------------------------------------
// Lifecycle bucketing
// ---------------------------------------------------------------------------

// LifecycleStage partitions purchased customers by order recency.
type LifecycleStage string

const (
	StageNew     LifecycleStage = "new"
	StageReorder LifecycleStage = "reorder"
	StageLapsed  LifecycleStage = "lapsed"
	StageLost    LifecycleStage = "lost"
)

// LifecycleThresholds are the per-tenant recency boundaries in days.
// Invariant: NewMaxDays < ReorderMaxDays < LapsedMaxDays.
type LifecycleThresholds struct {
	NewMaxDays     int
	ReorderMaxDays int
	LapsedMaxDays  int
}

// Validate checks the threshold ordering invariant.
func (t LifecycleThresholds) Validate() error {
	if t.NewMaxDays <= 0 || t.NewMaxDays >= t.ReorderMaxDays || t.ReorderMaxDays >= t.LapsedMaxDays {
		return errors.New("report: lifecycle thresholds must satisfy 0 < new < reorder < lapsed")
	}
	return nil
}

// Stage buckets a customer by elapsed days since their last order.
func (t LifecycleThresholds) Stage(elapsedDays int) LifecycleStage {
	switch {
	case elapsedDays <= t.NewMaxDays:
		return StageNew
	case elapsedDays <= t.ReorderMaxDays:
		return StageReorder
	case elapsedDays <= t.LapsedMaxDays:
		return StageLapsed
	default:
		return StageLost
	}
}

// SettingsRepository exposes the per-tenant reporting configuration owned
// by the settings subsystem.
type SettingsRepository interface {
	GetLifecycleThresholds(ctx context.Context, tenantID uuid.UUID) (LifecycleThresholds, error)
	GetFeeSettings(ctx context.Context, tenantID uuid.UUID) (FeeSettings, error)
}

// FeeSettings drive the net cash computation.
type FeeSettings struct {
	PlatformFeeRate       decimal.Decimal
	PerOrderFulfilmentFee decimal.Decimal
}
