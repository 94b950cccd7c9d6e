package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// SyncLogRepository implements the ingestion.SyncLogRepository interface.
// The log is append-only; entries are never updated or deleted.
type SyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Append writes one audit record. ID and timestamp are filled in when the
// caller leaves them zero.
func (r *SyncLogRepository) Append(ctx context.Context, entry *ingestion.SyncLogEntry) error {
	if entry.TenantID == uuid.Nil {
		return tenant.ErrTenantIDRequired
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.SyncedAt.IsZero() {
		entry.SyncedAt = time.Now().UTC()
	}

	model := &models.SyncLogModel{
		ID:        entry.ID,
		TenantID:  entry.TenantID,
		Source:    entry.Source,
		Status:    string(entry.Status),
		SyncedAt:  entry.SyncedAt,
		Detail:    entry.Detail,
		CreatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// List returns entries for a tenant, newest first, with the total count
// for pagination. An empty source matches all sources.
func (r *SyncLogRepository) List(ctx context.Context, tenantID uuid.UUID, source string, limit, offset int) ([]ingestion.SyncLogEntry, int64, error) {
	if tenantID == uuid.Nil {
		return nil, 0, tenant.ErrTenantIDRequired
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).
		Model(&models.SyncLogModel{}).
		Scopes(tenant.Scope(tenantID))
	if source != "" {
		query = query.Where("source = ?", source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SyncLogModel
	if err := query.
		Order("synced_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]ingestion.SyncLogEntry, len(rows))
	for i, row := range rows {
		entries[i] = ingestion.SyncLogEntry{
			ID:       row.ID,
			TenantID: row.TenantID,
			Source:   row.Source,
			Status:   ingestion.SyncStatus(row.Status),
			SyncedAt: row.SyncedAt,
			Detail:   row.Detail,
		}
	}
	return entries, total, nil
}

var _ ingestion.SyncLogRepository = (*SyncLogRepository)(nil)
