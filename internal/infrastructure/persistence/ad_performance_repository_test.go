package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

func adPerfRow(t *testing.T, date, adID, spend string) ingestion.AdPerformanceRow {
	t.Helper()
	return ingestion.AdPerformanceRow{
		Date:       testDate(t, date),
		Platform:   "METAADS",
		CampaignID: "c1",
		AdsetID:    "as1",
		AdID:       adID,
		Spend:      dec(spend),
		Clicks:     10,
	}
}

func TestAdPerformanceUpsertBatchInsertsThenUpdates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdPerformanceRepository(db)
	tenantID := newTenantID()
	ctx := context.Background()

	res, err := repo.UpsertBatch(ctx, tenantID, []ingestion.AdPerformanceRow{
		adPerfRow(t, "2026-03-01", "ad1", "10.00"),
		adPerfRow(t, "2026-03-01", "ad2", "20.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Updated)

	// Same keys again with new spend: updates, no duplicate rows.
	res, err = repo.UpsertBatch(ctx, tenantID, []ingestion.AdPerformanceRow{
		adPerfRow(t, "2026-03-01", "ad1", "15.00"),
		adPerfRow(t, "2026-03-02", "ad1", "30.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	var count int64
	require.NoError(t, db.Model(&models.AdPerformanceModel{}).
		Where("tenant_id = ?", tenantID).Count(&count).Error)
	assert.Equal(t, int64(3), count)

	var row models.AdPerformanceModel
	require.NoError(t, db.
		Where("tenant_id = ? AND ad_id = ? AND date = ?", tenantID, "ad1", testDate(t, "2026-03-01")).
		First(&row).Error)
	assert.True(t, row.Spend.Equal(dec("15.00")), "spend = %s", row.Spend)
}

func TestAdPerformanceUpsertBatchScopesByTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdPerformanceRepository(db)
	ctx := context.Background()

	tenantA := newTenantID()
	tenantB := newTenantID()

	_, err := repo.UpsertBatch(ctx, tenantA, []ingestion.AdPerformanceRow{adPerfRow(t, "2026-03-01", "ad1", "10.00")})
	require.NoError(t, err)

	// Identical natural key under a different tenant is a distinct row.
	res, err := repo.UpsertBatch(ctx, tenantB, []ingestion.AdPerformanceRow{adPerfRow(t, "2026-03-01", "ad1", "99.00")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)

	var count int64
	require.NoError(t, db.Model(&models.AdPerformanceModel{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestAdPerformanceUpsertBatchRejectsNilTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdPerformanceRepository(db)

	_, err := repo.UpsertBatch(context.Background(), uuid.Nil, []ingestion.AdPerformanceRow{adPerfRow(t, "2026-03-01", "ad1", "10.00")})
	assert.ErrorIs(t, err, tenant.ErrTenantIDRequired)
}

func TestAdPerformanceUpsertBatchEmptyInput(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdPerformanceRepository(db)

	res, err := repo.UpsertBatch(context.Background(), newTenantID(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Written())
}
