package sync

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
)

// UnitKind names the kind of work one unit performs
type UnitKind string

const (
	UnitKindOrders    UnitKind = "orders"
	UnitKindCatalog   UnitKind = "catalog"
	UnitKindAds       UnitKind = "ads"
	UnitKindAnalytics UnitKind = "analytics"
	UnitKindInventory UnitKind = "inventory"
)

// Unit is one independent slice of a backfill: a single tenant, provider
// and calendar day (catalog units have no day).
type Unit struct {
	TenantID uuid.UUID               `json:"tenantId"`
	Provider connector.ProviderCode  `json:"provider"`
	Kind     UnitKind                `json:"kind"`
	Date     time.Time               `json:"date,omitzero"`
}

// UnitResult is the outcome of one unit. A failing unit carries the
// sanitized error message and never affects its siblings.
type UnitResult struct {
	Unit              Unit   `json:"unit"`
	Succeeded         bool   `json:"succeeded"`
	RowsFetched       int    `json:"rowsFetched"`
	DuplicatesRemoved int    `json:"duplicatesRemoved"`
	Inserted          int    `json:"inserted"`
	Updated           int    `json:"updated"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
}

// BackfillResult is the merged outcome of one orchestrator run.
type BackfillResult struct {
	Source         string               `json:"source"`
	Status         ingestion.SyncStatus `json:"status"`
	UnitsTotal     int                  `json:"unitsTotal"`
	UnitsSucceeded int                  `json:"unitsSucceeded"`
	UnitsFailed    int                  `json:"unitsFailed"`
	Units          []UnitResult         `json:"perUnitResults"`
}

// ---------------------------------------------------------------------------
// Fetcher ports, satisfied by the infrastructure connector adapters
// ---------------------------------------------------------------------------

// StorefrontFetcher pulls orders and the product catalog
type StorefrontFetcher interface {
	FetchOrders(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.OrderRow, error)
	FetchProducts(ctx context.Context, conn *connector.Connection) ([]ingestion.ProductRow, error)
}

// AdInsightsFetcher pulls ad-level daily insight rows
type AdInsightsFetcher interface {
	FetchInsights(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.AdPerformanceRow, error)
}

// AdReportFetcher pulls daily report rows
type AdReportFetcher interface {
	FetchReport(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.AdPerformanceRow, error)
}

// AnalyticsFetcher pulls one day of site analytics
type AnalyticsFetcher interface {
	FetchDaily(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.DailyAnalyticsRow, error)
}

// InventoryFetcher pulls stock snapshots for one date
type InventoryFetcher interface {
	FetchSnapshots(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.InventorySnapshotRow, error)
}

// Fetchers bundles the per-provider pull ports
type Fetchers struct {
	Shopfront StorefrontFetcher
	MetaAds   AdInsightsFetcher
	SearchAds AdReportFetcher
	SitePulse AnalyticsFetcher
	Fulfilbay InventoryFetcher
}

// Repositories bundles the write-side ports
type Repositories struct {
	Ads       ingestion.AdPerformanceRepository
	Orders    ingestion.OrderRepository
	Products  ingestion.ProductRepository
	Analytics ingestion.DailyAnalyticsRepository
	Inventory ingestion.InventorySnapshotRepository
	SyncLogs  ingestion.SyncLogRepository
}
