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

// InventorySnapshotRepository implements the ingestion.InventorySnapshotRepository interface
type InventorySnapshotRepository struct {
	db *gorm.DB
}

// NewInventorySnapshotRepository creates a new inventory snapshot repository
func NewInventorySnapshotRepository(db *gorm.DB) *InventorySnapshotRepository {
	return &InventorySnapshotRepository{db: db}
}

// UpsertBatch writes snapshot rows keyed by date and SKU.
func (r *InventorySnapshotRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.InventorySnapshotRow) (ingestion.WriteResult, error) {
	var result ingestion.WriteResult
	if len(rows) == 0 {
		return result, nil
	}
	if tenantID == uuid.Nil {
		return result, tenant.ErrTenantIDRequired
	}

	now := time.Now().UTC()
	batch := make([]*models.InventorySnapshotModel, len(rows))
	keys := make([][]any, len(rows))
	for i, row := range rows {
		date := normalizeDate(row.SnapshotDate)
		batch[i] = &models.InventorySnapshotModel{
			ID:           uuid.New(),
			TenantID:     tenantID,
			SnapshotDate: date,
			SKU:          row.SKU,
			OnHand:       row.OnHand,
			Committed:    row.Committed,
			Available:    row.Available,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		keys[i] = []any{date, row.SKU}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.InventorySnapshotModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("(snapshot_date, sku) IN ?", keys).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "snapshot_date"}, {Name: "sku"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"on_hand", "committed", "available", "updated_at",
			}),
		}).CreateInBatches(batch, 200).Error; err != nil {
			return err
		}

		result.Updated = int(existing)
		result.Inserted = len(rows) - int(existing)
		return nil
	})
	return result, err
}
