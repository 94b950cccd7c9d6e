package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// ProductRepository implements the ingestion.ProductRepository interface
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// UpsertBatch writes SKU master records by natural key.
func (r *ProductRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.ProductRow) (ingestion.WriteResult, error) {
	var result ingestion.WriteResult
	if len(rows) == 0 {
		return result, nil
	}
	if tenantID == uuid.Nil {
		return result, tenant.ErrTenantIDRequired
	}

	now := time.Now().UTC()
	batch := make([]*models.ProductModel, len(rows))
	skus := make([]string, len(rows))
	for i, row := range rows {
		status := row.Status
		if status == "" {
			status = "active"
		}
		batch[i] = &models.ProductModel{
			ID:        uuid.New(),
			TenantID:  tenantID,
			SKU:       row.SKU,
			Name:      row.Name,
			Category:  row.Category,
			Vendor:    row.Vendor,
			Barcode:   row.Barcode,
			Cost:      row.Cost,
			Price:     row.Price,
			WeightKg:  row.WeightKg,
			HSCode:    row.HSCode,
			Origin:    row.Origin,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		skus[i] = row.SKU
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ProductModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("sku IN ?", skus).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "category", "vendor", "barcode", "cost", "price",
				"weight_kg", "hs_code", "origin", "status", "updated_at",
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

// UpdateFields applies a partial update to one product. Field names are
// column names; fields not present stay untouched.
func (r *ProductRepository) UpdateFields(ctx context.Context, tenantID uuid.UUID, sku string, fields map[string]any) error {
	if tenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	if len(fields) == 0 {
		return nil
	}

	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("sku = ?", sku).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Deactivate marks a product inactive without deleting its row.
func (r *ProductRepository) Deactivate(ctx context.Context, tenantID uuid.UUID, sku string) error {
	return r.UpdateFields(ctx, tenantID, sku, map[string]any{"status": "inactive"})
}
