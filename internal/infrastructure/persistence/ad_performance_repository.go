package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// AdPerformanceRepository implements the ingestion.AdPerformanceRepository interface
type AdPerformanceRepository struct {
	db *gorm.DB
}

// NewAdPerformanceRepository creates a new ad performance repository
func NewAdPerformanceRepository(db *gorm.DB) *AdPerformanceRepository {
	return &AdPerformanceRepository{db: db}
}

var adPerformanceUpdateColumns = []string{
	"campaign_name",
	"adset_name",
	"ad_name",
	"spend",
	"impressions",
	"clicks",
	"purchases",
	"purchase_value",
	"reach",
	"frequency",
	"updated_at",
}

// UpsertBatch writes the rows by natural key. Rows already deduplicated by
// the caller; a second write of the same key overwrites the metric columns.
func (r *AdPerformanceRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.AdPerformanceRow) (ingestion.WriteResult, error) {
	var result ingestion.WriteResult
	if len(rows) == 0 {
		return result, nil
	}
	if tenantID == uuid.Nil {
		return result, tenant.ErrTenantIDRequired
	}

	now := time.Now().UTC()
	batch := make([]*models.AdPerformanceModel, len(rows))
	keys := make([][]any, len(rows))
	for i, row := range rows {
		date := normalizeDate(row.Date)
		batch[i] = &models.AdPerformanceModel{
			ID:            uuid.New(),
			TenantID:      tenantID,
			Date:          date,
			Platform:      row.Platform,
			CampaignID:    row.CampaignID,
			AdsetID:       row.AdsetID,
			AdID:          row.AdID,
			CampaignName:  row.CampaignName,
			AdsetName:     row.AdsetName,
			AdName:        row.AdName,
			Spend:         row.Spend,
			Impressions:   row.Impressions,
			Clicks:        row.Clicks,
			Purchases:     row.Purchases,
			PurchaseValue: row.PurchaseValue,
			Reach:         row.Reach,
			Frequency:     row.Frequency,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		keys[i] = []any{date, row.Platform, row.CampaignID, row.AdsetID, row.AdID}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.AdPerformanceModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("(date, platform, campaign_id, adset_id, ad_id) IN ?", keys).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "date"}, {Name: "platform"},
				{Name: "campaign_id"}, {Name: "adset_id"}, {Name: "ad_id"},
			},
			DoUpdates: clause.AssignmentColumns(adPerformanceUpdateColumns),
		}).CreateInBatches(batch, 200).Error; err != nil {
			return err
		}

		result.Updated = int(existing)
		result.Inserted = len(rows) - int(existing)
		return nil
	})
	return result, err
}

// normalizeDate truncates a timestamp to the start of its UTC day
func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
