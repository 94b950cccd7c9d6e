package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockConnections struct{ mock.Mock }

func (m *mockConnections) GetConnection(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode) (*connector.Connection, error) {
	args := m.Called(ctx, tenantID, provider)
	if conn := args.Get(0); conn != nil {
		return conn.(*connector.Connection), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConnections) ListTenantsWithProvider(ctx context.Context, provider connector.ProviderCode) ([]uuid.UUID, error) {
	args := m.Called(ctx, provider)
	if ids := args.Get(0); ids != nil {
		return ids.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdFetcher struct{ mock.Mock }

func (m *mockAdFetcher) FetchInsights(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.AdPerformanceRow, error) {
	args := m.Called(ctx, conn, day)
	if rows := args.Get(0); rows != nil {
		return rows.([]ingestion.AdPerformanceRow), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStorefrontFetcher struct{ mock.Mock }

func (m *mockStorefrontFetcher) FetchOrders(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.OrderRow, error) {
	args := m.Called(ctx, conn, day)
	if rows := args.Get(0); rows != nil {
		return rows.([]ingestion.OrderRow), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorefrontFetcher) FetchProducts(ctx context.Context, conn *connector.Connection) ([]ingestion.ProductRow, error) {
	args := m.Called(ctx, conn)
	if rows := args.Get(0); rows != nil {
		return rows.([]ingestion.ProductRow), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdRepo struct{ mock.Mock }

func (m *mockAdRepo) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.AdPerformanceRow) (ingestion.WriteResult, error) {
	args := m.Called(ctx, tenantID, rows)
	return args.Get(0).(ingestion.WriteResult), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.OrderRow) (ingestion.WriteResult, error) {
	args := m.Called(ctx, tenantID, rows)
	return args.Get(0).(ingestion.WriteResult), args.Error(1)
}

func (m *mockOrderRepo) RecalculateRepeatCustomers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.ProductRow) (ingestion.WriteResult, error) {
	args := m.Called(ctx, tenantID, rows)
	return args.Get(0).(ingestion.WriteResult), args.Error(1)
}

func (m *mockProductRepo) UpdateFields(ctx context.Context, tenantID uuid.UUID, sku string, fields map[string]any) error {
	return m.Called(ctx, tenantID, sku, fields).Error(0)
}

func (m *mockProductRepo) Deactivate(ctx context.Context, tenantID uuid.UUID, sku string) error {
	return m.Called(ctx, tenantID, sku).Error(0)
}

type mockSyncLogRepo struct{ mock.Mock }

func (m *mockSyncLogRepo) Append(ctx context.Context, entry *ingestion.SyncLogEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockSyncLogRepo) List(ctx context.Context, tenantID uuid.UUID, source string, limit, offset int) ([]ingestion.SyncLogEntry, int64, error) {
	args := m.Called(ctx, tenantID, source, limit, offset)
	if entries := args.Get(0); entries != nil {
		return entries.([]ingestion.SyncLogEntry), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func enabledConnection(tenantID uuid.UUID, provider connector.ProviderCode) *connector.Connection {
	return &connector.Connection{
		TenantID:    tenantID,
		Provider:    provider,
		Host:        "https://api.example.com",
		AccessToken: "token",
		Enabled:     true,
	}
}

func TestRunBackfillPartialSuccess(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	fetcher := &mockAdFetcher{}
	adRepo := &mockAdRepo{}
	logs := &mockSyncLogRepo{}

	conn := enabledConnection(tenantID, connector.ProviderMetaAds)
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderMetaAds).Return(conn, nil)

	rows := []ingestion.AdPerformanceRow{{Date: day(t, "2026-03-01"), Platform: "METAADS", AdID: "a1"}}
	fetcher.On("FetchInsights", mock.Anything, conn, day(t, "2026-03-01")).Return(rows, nil)
	fetcher.On("FetchInsights", mock.Anything, conn, day(t, "2026-03-02")).Return(nil, errors.New("upstream HTTP 500"))
	fetcher.On("FetchInsights", mock.Anything, conn, day(t, "2026-03-03")).Return(rows, nil)

	adRepo.On("UpsertBatch", mock.Anything, tenantID, mock.Anything).Return(ingestion.WriteResult{Inserted: 1}, nil)
	logs.On("Append", mock.Anything, mock.MatchedBy(func(entry *ingestion.SyncLogEntry) bool {
		return entry.Source == "metaads" && entry.Status == ingestion.SyncStatusSuccess
	})).Return(nil)

	o := NewOrchestrator(conns, Fetchers{MetaAds: fetcher}, Repositories{Ads: adRepo, SyncLogs: logs}, 2, nil)
	result, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderMetaAds, day(t, "2026-03-01"), day(t, "2026-03-03"))
	require.NoError(t, err)

	assert.Equal(t, ingestion.SyncStatusSuccess, result.Status)
	assert.Equal(t, 3, result.UnitsTotal)
	assert.Equal(t, 2, result.UnitsSucceeded)
	assert.Equal(t, 1, result.UnitsFailed)
	assert.Contains(t, result.Units[1].ErrorMessage, "HTTP 500")
	logs.AssertExpectations(t)
}

func TestRunBackfillWritesPartialPagesOnFetchFailure(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	fetcher := &mockAdFetcher{}
	adRepo := &mockAdRepo{}
	logs := &mockSyncLogRepo{}

	conn := enabledConnection(tenantID, connector.ProviderMetaAds)
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderMetaAds).Return(conn, nil)

	// Fetch dies on the second page; the first page's rows come back with
	// the error and must still reach the store.
	partial := []ingestion.AdPerformanceRow{
		{Date: day(t, "2026-03-02"), Platform: "METAADS", AdID: "a1"},
		{Date: day(t, "2026-03-02"), Platform: "METAADS", AdID: "a2"},
	}
	fetcher.On("FetchInsights", mock.Anything, conn, day(t, "2026-03-02")).
		Return(partial, errors.New("upstream HTTP 500"))

	var stored []ingestion.AdPerformanceRow
	adRepo.On("UpsertBatch", mock.Anything, tenantID, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).([]ingestion.AdPerformanceRow)
		}).
		Return(ingestion.WriteResult{Inserted: 2}, nil)

	var detail string
	logs.On("Append", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			detail = args.Get(1).(*ingestion.SyncLogEntry).Detail
		}).
		Return(nil)

	o := NewOrchestrator(conns, Fetchers{MetaAds: fetcher}, Repositories{Ads: adRepo, SyncLogs: logs}, 2, nil)
	result, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderMetaAds, day(t, "2026-03-02"), day(t, "2026-03-02"))
	require.NoError(t, err)

	require.Len(t, stored, 2)
	unit := result.Units[0]
	assert.False(t, unit.Succeeded)
	assert.Equal(t, 2, unit.RowsFetched)
	assert.Equal(t, 2, unit.Inserted)
	assert.Contains(t, unit.ErrorMessage, "HTTP 500")
	assert.Equal(t, ingestion.SyncStatusError, result.Status)

	// The audit entry names the failing unit next to its message.
	assert.Contains(t, detail, `"unit":"ads:2026-03-02"`)
	assert.Contains(t, detail, "HTTP 500")
}

func TestRunBackfillAllUnitsFailed(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	fetcher := &mockAdFetcher{}
	logs := &mockSyncLogRepo{}

	conn := enabledConnection(tenantID, connector.ProviderMetaAds)
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderMetaAds).Return(conn, nil)
	fetcher.On("FetchInsights", mock.Anything, conn, mock.Anything).Return(nil, errors.New("boom"))
	logs.On("Append", mock.Anything, mock.MatchedBy(func(entry *ingestion.SyncLogEntry) bool {
		return entry.Status == ingestion.SyncStatusError
	})).Return(nil)

	o := NewOrchestrator(conns, Fetchers{MetaAds: fetcher}, Repositories{SyncLogs: logs}, 2, nil)
	result, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderMetaAds, day(t, "2026-03-01"), day(t, "2026-03-01"))
	require.NoError(t, err)

	assert.Equal(t, ingestion.SyncStatusError, result.Status)
	assert.Equal(t, 0, result.UnitsSucceeded)
	logs.AssertExpectations(t)
}

func TestRunBackfillAuthShortCircuit(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	logs := &mockSyncLogRepo{}

	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderMetaAds).
		Return(nil, connector.ErrProviderNotConfigured)

	o := NewOrchestrator(conns, Fetchers{}, Repositories{SyncLogs: logs}, 2, nil)
	_, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderMetaAds, day(t, "2026-03-01"), day(t, "2026-03-02"))

	assert.ErrorIs(t, err, shared.ErrAuthFailed)
	logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRunBackfillDisabledConnection(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	logs := &mockSyncLogRepo{}

	conn := enabledConnection(tenantID, connector.ProviderMetaAds)
	conn.Enabled = false
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderMetaAds).Return(conn, nil)

	o := NewOrchestrator(conns, Fetchers{}, Repositories{SyncLogs: logs}, 2, nil)
	_, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderMetaAds, day(t, "2026-03-01"), day(t, "2026-03-01"))

	assert.ErrorIs(t, err, shared.ErrAuthFailed)
	logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRunBackfillInvalidRange(t *testing.T) {
	o := NewOrchestrator(&mockConnections{}, Fetchers{}, Repositories{}, 2, nil)
	_, err := o.RunBackfill(context.Background(), uuid.New(), connector.ProviderMetaAds, day(t, "2026-03-02"), day(t, "2026-03-01"))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRunBackfillShopfrontAddsCatalogUnitAndRecalculates(t *testing.T) {
	tenantID := uuid.New()
	conns := &mockConnections{}
	fetcher := &mockStorefrontFetcher{}
	orderRepo := &mockOrderRepo{}
	productRepo := &mockProductRepo{}
	logs := &mockSyncLogRepo{}

	conn := enabledConnection(tenantID, connector.ProviderShopfront)
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).Return(conn, nil)

	orders := []ingestion.OrderRow{{ExternalID: "o1", OrderedAt: day(t, "2026-03-01"), Email: "a@example.com"}}
	products := []ingestion.ProductRow{{SKU: "SKU-1", Name: "Widget"}}
	fetcher.On("FetchOrders", mock.Anything, conn, day(t, "2026-03-01")).Return(orders, nil)
	fetcher.On("FetchProducts", mock.Anything, conn).Return(products, nil)

	orderRepo.On("UpsertBatch", mock.Anything, tenantID, mock.Anything).Return(ingestion.WriteResult{Inserted: 1}, nil)
	orderRepo.On("RecalculateRepeatCustomers", mock.Anything, tenantID).Return(0, nil)
	productRepo.On("UpsertBatch", mock.Anything, tenantID, mock.Anything).Return(ingestion.WriteResult{Inserted: 1}, nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	o := NewOrchestrator(conns, Fetchers{Shopfront: fetcher},
		Repositories{Orders: orderRepo, Products: productRepo, SyncLogs: logs}, 2, nil)
	result, err := o.RunBackfill(context.Background(), tenantID, connector.ProviderShopfront, day(t, "2026-03-01"), day(t, "2026-03-01"))
	require.NoError(t, err)

	// One orders unit plus the catalog unit.
	assert.Equal(t, 2, result.UnitsTotal)
	assert.Equal(t, 2, result.UnitsSucceeded)
	orderRepo.AssertCalled(t, "RecalculateRepeatCustomers", mock.Anything, tenantID)
}

func TestRunSweepLogsPerTenant(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()
	conns := &mockConnections{}
	logs := &mockSyncLogRepo{}
	fetcher := &mockAdFetcher{}

	conns.On("ListTenantsWithProvider", mock.Anything, connector.ProviderMetaAds).
		Return([]uuid.UUID{tenantA, tenantB}, nil)
	conns.On("GetConnection", mock.Anything, tenantA, connector.ProviderMetaAds).
		Return(enabledConnection(tenantA, connector.ProviderMetaAds), nil)
	conns.On("GetConnection", mock.Anything, tenantB, connector.ProviderMetaAds).
		Return(nil, connector.ErrProviderNotConfigured)

	adRepo := &mockAdRepo{}
	fetcher.On("FetchInsights", mock.Anything, mock.Anything, mock.Anything).Return([]ingestion.AdPerformanceRow{}, nil)
	adRepo.On("UpsertBatch", mock.Anything, tenantA, mock.Anything).Return(ingestion.WriteResult{}, nil)
	logs.On("Append", mock.Anything, mock.Anything).Return(nil)

	o := NewOrchestrator(conns, Fetchers{MetaAds: fetcher}, Repositories{Ads: adRepo, SyncLogs: logs}, 2, nil)
	result, err := o.RunSweep(context.Background(), connector.ProviderMetaAds, day(t, "2026-03-01"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.UnitsTotal)
	assert.Equal(t, 1, result.UnitsSucceeded)
	assert.Equal(t, 1, result.UnitsFailed)
	logs.AssertNumberOfCalls(t, "Append", 2)
}
