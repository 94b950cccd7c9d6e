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

// DailyAnalyticsRepository implements the ingestion.DailyAnalyticsRepository interface
type DailyAnalyticsRepository struct {
	db *gorm.DB
}

// NewDailyAnalyticsRepository creates a new daily analytics repository
func NewDailyAnalyticsRepository(db *gorm.DB) *DailyAnalyticsRepository {
	return &DailyAnalyticsRepository{db: db}
}

// UpsertBatch writes one analytics row per calendar day.
func (r *DailyAnalyticsRepository) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.DailyAnalyticsRow) (ingestion.WriteResult, error) {
	var result ingestion.WriteResult
	if len(rows) == 0 {
		return result, nil
	}
	if tenantID == uuid.Nil {
		return result, tenant.ErrTenantIDRequired
	}

	now := time.Now().UTC()
	batch := make([]*models.AnalyticsDayModel, len(rows))
	dates := make([]time.Time, len(rows))
	for i, row := range rows {
		date := normalizeDate(row.Date)
		batch[i] = &models.AnalyticsDayModel{
			ID:              uuid.New(),
			TenantID:        tenantID,
			Date:            date,
			Sessions:        row.Sessions,
			Pageviews:       row.Pageviews,
			ProductViews:    row.ProductViews,
			AddToCart:       row.AddToCart,
			CheckoutStarted: row.CheckoutStarted,
			Purchases:       row.Purchases,
			BounceRate:      row.BounceRate,
			OrganicSessions: row.OrganicSessions,
			PaidSessions:    row.PaidSessions,
			DirectSessions:  row.DirectSessions,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		dates[i] = date
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.AnalyticsDayModel{}).
			Scopes(tenant.Scope(tenantID)).
			Where("date IN ?", dates).
			Count(&existing).Error; err != nil {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"sessions", "pageviews", "product_views", "add_to_cart",
				"checkout_started", "purchases", "bounce_rate",
				"organic_sessions", "paid_sessions", "direct_sessions",
				"updated_at",
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
