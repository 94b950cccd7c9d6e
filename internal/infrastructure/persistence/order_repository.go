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

// OrderRepository implements the ingestion.OrderRepository interface.
// The repeat-customer flag is derived: within one customer email the
// oldest order is the first purchase and every later order is a repeat.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// UpsertBatch writes orders by external ID, then reflags the repeat
// status of every customer email touched by the batch.
func (r *OrderRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.OrderRow) (ingestion.WriteResult, error) {
	var result ingestion.WriteResult
	if len(rows) == 0 {
		return result, nil
	}
	if tenantID == uuid.Nil {
		return result, tenant.ErrTenantIDRequired
	}

	now := time.Now().UTC()
	batch := make([]*models.OrderModel, len(rows))
	externalIDs := make([]string, len(rows))
	emailSet := make(map[string]struct{})
	for i, row := range rows {
		batch[i] = &models.OrderModel{
			ID:              uuid.New(),
			TenantID:        tenantID,
			ExternalID:      row.ExternalID,
			OrderedAt:       row.OrderedAt.UTC(),
			Total:           row.Total,
			Currency:        row.Currency,
			Email:           row.Email,
			FinancialStatus: row.FinancialStatus,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		externalIDs[i] = row.ExternalID
		if row.Email != "" {
			emailSet[row.Email] = struct{}{}
		}
	}
	emails := make([]string, 0, len(emailSet))
	for email := range emailSet {
		emails = append(emails, email)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.OrderModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("external_id IN ?", externalIDs).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ordered_at", "total", "currency", "email", "financial_status", "updated_at",
			}),
		}).CreateInBatches(batch, 200).Error; err != nil {
			return err
		}

		if _, err := reflagRepeatCustomers(tx, tenantID, emails); err != nil {
			return err
		}

		result.Updated = int(existing)
		result.Inserted = len(rows) - int(existing)
		return nil
	})
	return result, err
}

// RecalculateRepeatCustomers reflags every customer of the tenant from
// scratch and returns the number of orders whose flag changed. This is
// the authoritative pass after out-of-order backfills.
func (r *OrderRepository) RecalculateRepeatCustomers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	if tenantID == uuid.Nil {
		return 0, tenant.ErrTenantIDRequired
	}

	var changed int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var emails []string
		if err := tx.Model(&models.OrderModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("email <> ''").
			Distinct().
			Pluck("email", &emails).Error; err != nil {
			return err
		}

		n, err := reflagRepeatCustomers(tx, tenantID, emails)
		if err != nil {
			return err
		}
		changed = n
		return nil
	})
	return changed, err
}

// reflagRepeatCustomers recomputes the repeat flag for the given emails,
// oldest order first. Ties on ordered_at break on external_id so repeated
// runs are deterministic.
func reflagRepeatCustomers(tx *gorm.DB, tenantID uuid.UUID, emails []string) (int, error) {
	changed := 0
	for _, email := range emails {
		var orders []models.OrderModel
		if err := tx.
			Scopes(tenant.Scope(tenantID)).
			Where("email = ?", email).
			Order("ordered_at ASC, external_id ASC").
			Find(&orders).Error; err != nil {
			return changed, err
		}
		for i := range orders {
			want := i > 0
			if orders[i].IsRepeatCustomer == want {
				continue
			}
			if err := tx.Model(&models.OrderModel{}).
				Where("id = ?", orders[i].ID).
				Updates(map[string]any{
					"is_repeat_customer": want,
					"updated_at":         time.Now().UTC(),
				}).Error; err != nil {
				return changed, err
			}
			changed++
		}
	}
	return changed, nil
}
