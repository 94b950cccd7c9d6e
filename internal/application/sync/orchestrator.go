// Package sync coordinates provider backfills: it resolves credentials,
// splits the requested range into per-day units, runs them with bounded
// concurrency and records one audit entry per run.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// maxBackfillDays bounds one backfill request
const maxBackfillDays = 366

// Orchestrator runs backfills and tenant sweeps.
type Orchestrator struct {
	connections   connector.ConnectionRepository
	fetchers      Fetchers
	repos         Repositories
	maxConcurrent int
	logger        *zap.Logger
}

// NewOrchestrator creates a new sync orchestrator
func NewOrchestrator(connections connector.ConnectionRepository, fetchers Fetchers, repos Repositories, maxConcurrent int, logger *zap.Logger) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		connections:   connections,
		fetchers:      fetchers,
		repos:         repos,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// RunBackfill pulls the inclusive date range for one tenant and provider.
// A missing or disabled credential fails the whole run before any unit
// starts and writes no sync log entry.
func (o *Orchestrator) RunBackfill(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, from, to time.Time) (*BackfillResult, error) {
	if !provider.IsValid() {
		return nil, shared.ErrInvalidInput
	}

	days, err := buildDays(from, to)
	if err != nil {
		return nil, err
	}

	conn, err := o.connections.GetConnection(ctx, tenantID, provider)
	if err != nil {
		if errors.Is(err, connector.ErrProviderNotConfigured) {
			return nil, shared.ErrAuthFailed
		}
		return nil, err
	}
	if err := conn.Validate(); err != nil {
		return nil, shared.ErrAuthFailed
	}

	units := o.buildUnits(tenantID, provider, days)
	result := o.runUnits(ctx, conn, units, sourceName(provider))

	// Backfills can deliver orders out of chronological order; the bulk
	// pass settles the repeat flags.
	if provider == connector.ProviderShopfront && result.UnitsSucceeded > 0 {
		if _, err := o.repos.Orders.RecalculateRepeatCustomers(ctx, tenantID); err != nil {
			o.logger.Warn("repeat customer recalculation failed",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	o.appendSyncLog(ctx, tenantID, result)
	return result, nil
}

// RunSweep pulls one day for every tenant with an enabled connection for
// the provider. Used for providers that push per-tenant data on a shared
// schedule, such as nightly warehouse snapshots.
func (o *Orchestrator) RunSweep(ctx context.Context, provider connector.ProviderCode, day time.Time) (*BackfillResult, error) {
	if !provider.IsValid() {
		return nil, shared.ErrInvalidInput
	}

	tenantIDs, err := o.connections.ListTenantsWithProvider(ctx, provider)
	if err != nil {
		return nil, err
	}

	kind := unitKindFor(provider)
	units := make([]Unit, len(tenantIDs))
	for i, tenantID := range tenantIDs {
		units[i] = Unit{TenantID: tenantID, Provider: provider, Kind: kind, Date: day}
	}

	result := o.runUnitsPerTenant(ctx, units, sourceName(provider))

	// Each tenant gets an audit entry covering only its own units.
	for _, tenantID := range tenantIDs {
		var own []UnitResult
		for _, r := range result.Units {
			if r.Unit.TenantID == tenantID {
				own = append(own, r)
			}
		}
		o.appendSyncLog(ctx, tenantID, mergeResults(result.Source, own))
	}
	return result, nil
}

// sourceName is the lowercase audit identifier for a provider
func sourceName(provider connector.ProviderCode) string {
	return strings.ToLower(provider.String())
}

// ---------------------------------------------------------------------------
// Unit construction and execution
// ---------------------------------------------------------------------------

func buildDays(from, to time.Time) ([]time.Time, error) {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if to.Before(from) {
		return nil, shared.ErrInvalidInput
	}

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		if len(days) > maxBackfillDays {
			return nil, shared.ErrInvalidInput
		}
	}
	return days, nil
}

func unitKindFor(provider connector.ProviderCode) UnitKind {
	switch provider {
	case connector.ProviderShopfront:
		return UnitKindOrders
	case connector.ProviderMetaAds, connector.ProviderSearchAds:
		return UnitKindAds
	case connector.ProviderSitePulse:
		return UnitKindAnalytics
	default:
		return UnitKindInventory
	}
}

// buildUnits expands a day list into units, oldest first. Storefront
// backfills add one catalog unit so the SKU master stays current.
func (o *Orchestrator) buildUnits(tenantID uuid.UUID, provider connector.ProviderCode, days []time.Time) []Unit {
	kind := unitKindFor(provider)
	units := make([]Unit, 0, len(days)+1)
	for _, day := range days {
		units = append(units, Unit{TenantID: tenantID, Provider: provider, Kind: kind, Date: day})
	}
	if provider == connector.ProviderShopfront {
		units = append(units, Unit{TenantID: tenantID, Provider: provider, Kind: UnitKindCatalog})
	}
	return units
}

// runUnits executes units that share one resolved connection.
func (o *Orchestrator) runUnits(ctx context.Context, conn *connector.Connection, units []Unit, source string) *BackfillResult {
	results := make([]UnitResult, len(units))

	sem := make(chan struct{}, o.maxConcurrent)
	var wg stdsync.WaitGroup
	for i := range units {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = o.runUnit(ctx, conn, units[i])
		}(i)
	}
	wg.Wait()

	return mergeResults(source, results)
}

// runUnitsPerTenant executes units that each resolve their own connection.
func (o *Orchestrator) runUnitsPerTenant(ctx context.Context, units []Unit, source string) *BackfillResult {
	results := make([]UnitResult, len(units))

	sem := make(chan struct{}, o.maxConcurrent)
	var wg stdsync.WaitGroup
	for i := range units {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			unit := units[i]
			conn, err := o.connections.GetConnection(ctx, unit.TenantID, unit.Provider)
			if err != nil {
				results[i] = failedUnit(unit, err)
				return
			}
			results[i] = o.runUnit(ctx, conn, unit)
		}(i)
	}
	wg.Wait()

	return mergeResults(source, results)
}

// runUnit does one strictly sequential fetch, dedup and upsert. A fetch
// failing mid-pagination still returns the pages already consumed; those
// rows are written before the unit is marked failed.
func (o *Orchestrator) runUnit(ctx context.Context, conn *connector.Connection, unit Unit) UnitResult {
	result := UnitResult{Unit: unit}

	var (
		written  ingestion.WriteResult
		fetchErr error
		writeErr error
	)

	switch unit.Kind {
	case UnitKindOrders:
		var rows []ingestion.OrderRow
		rows, fetchErr = o.fetchers.Shopfront.FetchOrders(ctx, conn, unit.Date)
		result.RowsFetched = len(rows)
		result.DuplicatesRemoved = ingestion.DuplicatesRemoved(rows)
		if fetchErr == nil || len(rows) > 0 {
			written, writeErr = o.repos.Orders.UpsertBatch(ctx, unit.TenantID, ingestion.Dedupe(rows))
		}
	case UnitKindCatalog:
		var rows []ingestion.ProductRow
		rows, fetchErr = o.fetchers.Shopfront.FetchProducts(ctx, conn)
		result.RowsFetched = len(rows)
		result.DuplicatesRemoved = ingestion.DuplicatesRemoved(rows)
		if fetchErr == nil || len(rows) > 0 {
			written, writeErr = o.repos.Products.UpsertBatch(ctx, unit.TenantID, ingestion.Dedupe(rows))
		}
	case UnitKindAds:
		var rows []ingestion.AdPerformanceRow
		if unit.Provider == connector.ProviderMetaAds {
			rows, fetchErr = o.fetchers.MetaAds.FetchInsights(ctx, conn, unit.Date)
		} else {
			rows, fetchErr = o.fetchers.SearchAds.FetchReport(ctx, conn, unit.Date)
		}
		result.RowsFetched = len(rows)
		result.DuplicatesRemoved = ingestion.DuplicatesRemoved(rows)
		if fetchErr == nil || len(rows) > 0 {
			written, writeErr = o.repos.Ads.UpsertBatch(ctx, unit.TenantID, ingestion.Dedupe(rows))
		}
	case UnitKindAnalytics:
		var rows []ingestion.DailyAnalyticsRow
		rows, fetchErr = o.fetchers.SitePulse.FetchDaily(ctx, conn, unit.Date)
		result.RowsFetched = len(rows)
		result.DuplicatesRemoved = ingestion.DuplicatesRemoved(rows)
		if fetchErr == nil || len(rows) > 0 {
			written, writeErr = o.repos.Analytics.UpsertBatch(ctx, unit.TenantID, ingestion.Dedupe(rows))
		}
	case UnitKindInventory:
		var rows []ingestion.InventorySnapshotRow
		rows, fetchErr = o.fetchers.Fulfilbay.FetchSnapshots(ctx, conn, unit.Date)
		result.RowsFetched = len(rows)
		result.DuplicatesRemoved = ingestion.DuplicatesRemoved(rows)
		if fetchErr == nil || len(rows) > 0 {
			written, writeErr = o.repos.Inventory.UpsertBatch(ctx, unit.TenantID, ingestion.Dedupe(rows))
		}
	default:
		fetchErr = fmt.Errorf("unknown unit kind %q", unit.Kind)
	}

	result.Inserted = written.Inserted
	result.Updated = written.Updated

	if err := errors.Join(fetchErr, writeErr); err != nil {
		o.logger.Warn("sync unit failed",
			zap.String("tenant_id", unit.TenantID.String()),
			zap.String("provider", unit.Provider.String()),
			zap.String("kind", string(unit.Kind)),
			zap.Int("rows_fetched", result.RowsFetched),
			zap.Error(err))
		result.ErrorMessage = connector.SanitizeBody([]byte(err.Error()))
		return result
	}

	result.Succeeded = true
	return result
}

func failedUnit(unit Unit, err error) UnitResult {
	return UnitResult{
		Unit:         unit,
		ErrorMessage: connector.SanitizeBody([]byte(err.Error())),
	}
}

func mergeResults(source string, results []UnitResult) *BackfillResult {
	merged := &BackfillResult{
		Source:     source,
		UnitsTotal: len(results),
		Units:      results,
	}
	for _, r := range results {
		if r.Succeeded {
			merged.UnitsSucceeded++
		} else {
			merged.UnitsFailed++
		}
	}
	if merged.UnitsSucceeded > 0 {
		merged.Status = ingestion.SyncStatusSuccess
	} else {
		merged.Status = ingestion.SyncStatusError
	}
	return merged
}

// syncLogError ties a failure to the unit it came from in the audit detail.
type syncLogError struct {
	Unit         string `json:"unit"`
	ErrorMessage string `json:"errorMessage"`
}

// unitLabel identifies a unit inside an audit entry, e.g. "ads:2026-03-02".
// Catalog units carry no date.
func unitLabel(u Unit) string {
	if u.Date.IsZero() {
		return string(u.Kind)
	}
	return string(u.Kind) + ":" + u.Date.Format("2006-01-02")
}

// appendSyncLog records the run outcome. A log write failure is reported
// but does not fail the run.
func (o *Orchestrator) appendSyncLog(ctx context.Context, tenantID uuid.UUID, result *BackfillResult) {
	detail := struct {
		UnitsTotal     int            `json:"unitsTotal"`
		UnitsSucceeded int            `json:"unitsSucceeded"`
		UnitsFailed    int            `json:"unitsFailed"`
		Errors         []syncLogError `json:"errors,omitempty"`
	}{
		UnitsTotal:     result.UnitsTotal,
		UnitsSucceeded: result.UnitsSucceeded,
		UnitsFailed:    result.UnitsFailed,
	}
	for _, u := range result.Units {
		if !u.Succeeded {
			detail.Errors = append(detail.Errors, syncLogError{
				Unit:         unitLabel(u.Unit),
				ErrorMessage: u.ErrorMessage,
			})
		}
	}

	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte(`{}`)
	}

	entry := &ingestion.SyncLogEntry{
		TenantID: tenantID,
		Source:   result.Source,
		Status:   result.Status,
		SyncedAt: time.Now().UTC(),
		Detail:   connector.SanitizeBody(payload),
	}
	if err := o.repos.SyncLogs.Append(ctx, entry); err != nil {
		o.logger.Error("failed to append sync log",
			zap.String("tenant_id", tenantID.String()),
			zap.String("source", result.Source),
			zap.Error(err))
	}
}
