package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
)

func orderRow(externalID, email string, orderedAt time.Time, total string) ingestion.OrderRow {
	return ingestion.OrderRow{
		ExternalID:      externalID,
		OrderedAt:       orderedAt,
		Total:           dec(total),
		Currency:        "USD",
		Email:           email,
		FinancialStatus: "paid",
	}
}

func loadOrderFlags(t *testing.T, repo *OrderRepository, tenantID uuid.UUID) map[string]bool {
	t.Helper()
	var rows []models.OrderModel
	require.NoError(t, repo.db.Where("tenant_id = ?", tenantID).Find(&rows).Error)
	flags := make(map[string]bool, len(rows))
	for _, r := range rows {
		flags[r.ExternalID] = r.IsRepeatCustomer
	}
	return flags
}

func TestOrderUpsertBatchFlagsRepeatCustomers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res, err := repo.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o1", "a@example.com", base, "50.00"),
		orderRow("o2", "a@example.com", base.AddDate(0, 0, 3), "30.00"),
		orderRow("o3", "b@example.com", base, "20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)

	flags := loadOrderFlags(t, repo, tenantID)
	assert.False(t, flags["o1"])
	assert.True(t, flags["o2"])
	assert.False(t, flags["o3"])
}

func TestOrderRepeatFlagsOrderIndependent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// The newer order lands first; after the backfill delivers the older
	// one, the flags must settle on chronological order.
	_, err := repo.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o2", "a@example.com", base.AddDate(0, 0, 3), "30.00"),
	})
	require.NoError(t, err)

	flags := loadOrderFlags(t, repo, tenantID)
	assert.False(t, flags["o2"])

	_, err = repo.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o1", "a@example.com", base, "50.00"),
	})
	require.NoError(t, err)

	flags = loadOrderFlags(t, repo, tenantID)
	assert.False(t, flags["o1"])
	assert.True(t, flags["o2"])
}

func TestOrderRecalculateRepeatCustomers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	_, err := repo.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{
		orderRow("o1", "a@example.com", base, "50.00"),
		orderRow("o2", "a@example.com", base.AddDate(0, 0, 3), "30.00"),
	})
	require.NoError(t, err)

	// Corrupt a flag directly; the full pass must repair it.
	require.NoError(t, db.Model(&models.OrderModel{}).
		Where("tenant_id = ? AND external_id = ?", tenantID, "o1").
		Update("is_repeat_customer", true).Error)

	changed, err := repo.RecalculateRepeatCustomers(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	flags := loadOrderFlags(t, repo, tenantID)
	assert.False(t, flags["o1"])
	assert.True(t, flags["o2"])
}

func TestOrderUpsertBatchIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []ingestion.OrderRow{orderRow("o1", "a@example.com", base, "50.00")}

	_, err := repo.UpsertBatch(ctx, tenantID, rows)
	require.NoError(t, err)

	res, err := repo.UpsertBatch(ctx, tenantID, rows)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	var count int64
	require.NoError(t, db.Model(&models.OrderModel{}).
		Where("tenant_id = ?", tenantID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
