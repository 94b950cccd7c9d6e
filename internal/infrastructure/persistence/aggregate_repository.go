package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// AggregateRepository implements the report.AggregateRepository interface
// with daily GROUP BY rollups over the ingested tables.
type AggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository creates a new aggregate repository
func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// AdDailyAggregates sums ad metrics per date across all platforms and ads.
func (r *AggregateRepository) AdDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.AdDailyAggregate, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	var rows []report.AdDailyAggregate
	err := r.db.WithContext(ctx).
		Model(&models.AdPerformanceModel{}).
		Select("date, SUM(spend) AS spend, SUM(impressions) AS impressions, SUM(clicks) AS clicks, SUM(purchases) AS purchases, SUM(purchase_value) AS purchase_value").
		Scopes(tenant.Scope(tenantID)).
		Where("date >= ? AND date <= ?", normalizeDate(from), normalizeDate(to)).
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OrderDailyAggregates counts orders and sums revenue per order date.
func (r *AggregateRepository) OrderDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.OrderDailyAggregate, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	from = normalizeDate(from)
	// Orders carry full timestamps; the window upper bound is the end of
	// the "to" day, exclusive.
	toExclusive := normalizeDate(to).AddDate(0, 0, 1)

	var orders []models.OrderModel
	err := r.db.WithContext(ctx).
		Select("ordered_at, total").
		Scopes(tenant.Scope(tenantID)).
		Where("ordered_at >= ? AND ordered_at < ?", from, toExclusive).
		Order("ordered_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]*report.OrderDailyAggregate)
	var dates []time.Time
	for _, o := range orders {
		date := normalizeDate(o.OrderedAt.UTC())
		agg, ok := byDate[date]
		if !ok {
			agg = &report.OrderDailyAggregate{Date: date, Revenue: decimal.Zero}
			byDate[date] = agg
			dates = append(dates, date)
		}
		agg.OrderCount++
		agg.Revenue = agg.Revenue.Add(o.Total)
	}

	rows := make([]report.OrderDailyAggregate, len(dates))
	for i, date := range dates {
		rows[i] = *byDate[date]
	}
	return rows, nil
}

// AnalyticsDailyAggregates reads the per-day analytics rows. The table is
// already one row per day so no grouping is needed.
func (r *AggregateRepository) AnalyticsDailyAggregates(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]report.AnalyticsDailyAggregate, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	var days []models.AnalyticsDayModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("date >= ? AND date <= ?", normalizeDate(from), normalizeDate(to)).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}

	rows := make([]report.AnalyticsDailyAggregate, len(days))
	for i, d := range days {
		rows[i] = report.AnalyticsDailyAggregate{
			Date:            d.Date,
			Sessions:        d.Sessions,
			ProductViews:    d.ProductViews,
			AddToCart:       d.AddToCart,
			CheckoutStarted: d.CheckoutStarted,
			Purchases:       d.Purchases,
		}
	}
	return rows, nil
}

// CustomerOrderSummaries folds order recency per customer email. Orders
// without an email are anonymous and excluded.
func (r *AggregateRepository) CustomerOrderSummaries(ctx context.Context, tenantID uuid.UUID) ([]report.CustomerOrderSummary, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	var orders []models.OrderModel
	err := r.db.WithContext(ctx).
		Select("email, ordered_at").
		Scopes(tenant.Scope(tenantID)).
		Where("email <> ''").
		Order("email ASC, ordered_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	var summaries []report.CustomerOrderSummary
	for _, o := range orders {
		if n := len(summaries); n > 0 && summaries[n-1].Email == o.Email {
			summaries[n-1].OrdersCount++
			if o.OrderedAt.After(summaries[n-1].LastOrderAt) {
				summaries[n-1].LastOrderAt = o.OrderedAt
			}
			continue
		}
		summaries = append(summaries, report.CustomerOrderSummary{
			Email:       o.Email,
			OrdersCount: 1,
			LastOrderAt: o.OrderedAt,
		})
	}
	return summaries, nil
}

var _ report.AggregateRepository = (*AggregateRepository)(nil)
