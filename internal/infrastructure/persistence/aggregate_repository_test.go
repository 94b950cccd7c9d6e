package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/domain/ingestion"
)

func TestAdDailyAggregatesSumAcrossAds(t *testing.T) {
	db := setupTestDB(t)
	ads := NewAdPerformanceRepository(db)
	repo := NewAggregateRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	_, err := ads.UpsertBatch(ctx, tenantID, []ingestion.AdPerformanceRow{
		adPerfRow(t, "2026-03-01", "ad1", "10.00"),
		adPerfRow(t, "2026-03-01", "ad2", "20.00"),
		adPerfRow(t, "2026-03-02", "ad1", "5.00"),
	})
	require.NoError(t, err)

	rows, err := repo.AdDailyAggregates(ctx, tenantID, testDate(t, "2026-03-01"), testDate(t, "2026-03-02"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Date.Equal(testDate(t, "2026-03-01")))
	assert.True(t, rows[0].Spend.Equal(dec("30.00")), "spend = %s", rows[0].Spend)
	assert.Equal(t, int64(20), rows[0].Clicks)
	assert.True(t, rows[1].Spend.Equal(dec("5.00")))
}

func TestOrderDailyAggregatesBucketByDay(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	repo := NewAggregateRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	_, err := orders.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o1", "a@example.com", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), "50.00"),
		orderRow("o2", "b@example.com", time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC), "30.00"),
		orderRow("o3", "c@example.com", time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), "20.00"),
	})
	require.NoError(t, err)

	rows, err := repo.OrderDailyAggregates(ctx, tenantID, testDate(t, "2026-03-01"), testDate(t, "2026-03-02"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].OrderCount)
	assert.True(t, rows[0].Revenue.Equal(dec("80.00")))
}

func TestCustomerOrderSummaries(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	repo := NewAggregateRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := orders.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o1", "a@example.com", base, "50.00"),
		orderRow("o2", "a@example.com", base.AddDate(0, 0, 5), "30.00"),
		orderRow("o3", "", base, "10.00"), // anonymous, excluded
	})
	require.NoError(t, err)

	summaries, err := repo.CustomerOrderSummaries(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "a@example.com", summaries[0].Email)
	assert.Equal(t, int64(2), summaries[0].OrdersCount)
	assert.True(t, summaries[0].LastOrderAt.Equal(base.AddDate(0, 0, 5)))
}
