package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WriteResult reports the outcome of one upsert batch.
type WriteResult struct {
	Inserted int
	Updated  int
}

// Written returns the total number of rows written.
func (r WriteResult) Written() int {
	return r.Inserted + r.Updated
}

// AdPerformanceRepository persists ad performance rows by natural key.
type AdPerformanceRepository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []AdPerformanceRow) (WriteResult, error)
}

// InventorySnapshotRepository persists inventory snapshot rows by natural key.
type InventorySnapshotRepository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []InventorySnapshotRow) (WriteResult, error)
}

// DailyAnalyticsRepository persists analytics day rows by natural key.
type DailyAnalyticsRepository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []DailyAnalyticsRow) (WriteResult, error)
}

// OrderRepository persists orders and maintains the derived repeat-customer
// flag. RecalculateRepeatCustomers is authoritative after out-of-order
// backfills; the per-upsert pass is best effort.
type OrderRepository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []OrderRow) (WriteResult, error)
	RecalculateRepeatCustomers(ctx context.Context, tenantID uuid.UUID) (int, error)
}

// ProductRepository persists SKU master records. UpdateFields applies a
// partial update leaving unspecified fields untouched.
type ProductRepository interface {
	UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ProductRow) (WriteResult, error)
	UpdateFields(ctx context.Context, tenantID uuid.UUID, sku string, fields map[string]any) error
	Deactivate(ctx context.Context, tenantID uuid.UUID, sku string) error
}

// SyncStatus is the terminal status of one sync invocation.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// SyncLogEntry is the append-only audit record of one orchestrator run.
type SyncLogEntry struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Source   string
	Status   SyncStatus
	SyncedAt time.Time
	Detail   string
}

// SyncLogRepository appends and lists sync audit records. Entries are
// never updated.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *SyncLogEntry) error
	List(ctx context.Context, tenantID uuid.UUID, source string, limit, offset int) ([]SyncLogEntry, int64, error)
}
