package ingest

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/ingest"
)

// ImportInventory ingests a header-mapped warehouse snapshot export.
// Expected headers: snapshot_date, sku, on_hand, committed, available.
func (s *Service) ImportInventory(ctx context.Context, tenantID uuid.UUID, r io.Reader) (*Result, error) {
	reader, err := newReader(r)
	if err != nil {
		return nil, err
	}
	if err := reader.ParseHeader(); err != nil {
		return nil, wrapValidation(err)
	}

	result := &Result{}
	errs := ingest.NewErrorCollection(maxSampleErrors)
	var rows []ingestion.InventorySnapshotRow

	for {
		fields, rowNum, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		result.RowsTotal++

		rawDate := reader.Field(fields, "snapshot_date")
		date, err := ingest.ParseDate(rawDate)
		if err != nil {
			errs.AddFormatError(rowNum, "snapshot_date", "YYYY-MM-DD", rawDate)
			result.RowsFailed++
			continue
		}
		sku := reader.Field(fields, "sku")
		if sku == "" {
			errs.AddRequiredError(rowNum, "sku")
			result.RowsFailed++
			continue
		}

		rows = append(rows, ingestion.InventorySnapshotRow{
			SnapshotDate: date,
			SKU:          sku,
			OnHand:       ingest.CoerceInt64(reader.Field(fields, "on_hand")),
			Committed:    ingest.CoerceInt64(reader.Field(fields, "committed")),
			Available:    ingest.CoerceInt64(reader.Field(fields, "available")),
		})
		result.RowsParsed++
	}

	deduped := ingestion.Dedupe(rows)
	result.DuplicatesRemoved = len(rows) - len(deduped)

	written, err := s.repos.Inventory.UpsertBatch(ctx, tenantID, deduped)
	if err != nil {
		return nil, err
	}
	result.Inserted = written.Inserted
	result.Updated = written.Updated
	result.RowsWritten = written.Written()
	result.SampleErrors = errs.Messages()
	return result, nil
}
