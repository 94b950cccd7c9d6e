// Package ingest turns uploaded delimited-text exports into canonical
// rows and writes them through the idempotent store. Each provider's
// export format has its own normalization; the batch result is bounded
// regardless of file size.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
	"github.com/growthdeck/backend/internal/infrastructure/ingest"
)

// maxSampleErrors caps the per-batch error sample in responses
const maxSampleErrors = 20

// Result is the bounded outcome of one file import.
type Result struct {
	Source            string   `json:"source"`
	RowsTotal         int      `json:"rowsTotal"`
	RowsParsed        int      `json:"rowsParsed"`
	RowsFailed        int      `json:"rowsFailed"`
	DuplicatesRemoved int      `json:"duplicatesRemoved"`
	RowsWritten       int      `json:"rowsWritten"`
	Inserted          int      `json:"inserted"`
	Updated           int      `json:"updated"`
	SampleErrors      []string `json:"sampleErrors,omitempty"`
}

// Repositories bundles the write-side ports used by imports
type Repositories struct {
	Ads       ingestion.AdPerformanceRepository
	Products  ingestion.ProductRepository
	Analytics ingestion.DailyAnalyticsRepository
	Inventory ingestion.InventorySnapshotRepository
	SyncLogs  ingestion.SyncLogRepository
}

// Service normalizes and stores uploaded exports.
type Service struct {
	repos  Repositories
	logger *zap.Logger
}

// NewService creates a new import service
func NewService(repos Repositories, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repos: repos, logger: logger}
}

// Import dispatches an upload to the provider's format handler.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, r io.Reader) (*Result, error) {
	var (
		result *Result
		err    error
	)
	switch provider {
	case connector.ProviderMetaAds, connector.ProviderSearchAds:
		result, err = s.ImportAds(ctx, tenantID, provider.String(), r)
	case connector.ProviderShopfront:
		result, err = s.ImportCatalog(ctx, tenantID, r)
	case connector.ProviderSitePulse:
		result, err = s.ImportAnalytics(ctx, tenantID, r)
	case connector.ProviderFulfilbay:
		result, err = s.ImportInventory(ctx, tenantID, r)
	default:
		return nil, shared.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	result.Source = "import:" + strings.ToLower(provider.String())
	s.appendSyncLog(ctx, tenantID, result)
	return result, nil
}

// appendSyncLog records the import outcome in the audit log
func (s *Service) appendSyncLog(ctx context.Context, tenantID uuid.UUID, result *Result) {
	status := ingestion.SyncStatusSuccess
	if result.RowsParsed == 0 && result.RowsFailed > 0 {
		status = ingestion.SyncStatusError
	}

	detail, err := json.Marshal(result)
	if err != nil {
		detail = []byte(`{}`)
	}

	entry := &ingestion.SyncLogEntry{
		TenantID: tenantID,
		Source:   result.Source,
		Status:   status,
		SyncedAt: time.Now().UTC(),
		Detail:   connector.SanitizeBody(detail),
	}
	if err := s.repos.SyncLogs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append sync log",
			zap.String("tenant_id", tenantID.String()),
			zap.String("source", result.Source),
			zap.Error(err))
	}
}

// newReader wraps upload decoding failures as validation errors so the
// edge maps them to a 400-class response.
func newReader(r io.Reader) (*ingest.Reader, error) {
	reader, err := ingest.NewReader(r)
	if err != nil {
		return nil, wrapValidation(err)
	}
	return reader, nil
}

func wrapValidation(err error) error {
	return fmt.Errorf("%w: %v", shared.ErrValidation, err)
}
