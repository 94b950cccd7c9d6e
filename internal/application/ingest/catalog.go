package ingest

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
	"github.com/growthdeck/backend/internal/infrastructure/ingest"
)

// Catalog exports are header-mapped. Every recognized column has an
// explicit typed setter; unknown headers are ignored and missing ones
// leave the field at its zero value.
var productFieldSetters = map[string]func(*ingestion.ProductRow, string){
	"sku":       func(p *ingestion.ProductRow, v string) { p.SKU = v },
	"name":      func(p *ingestion.ProductRow, v string) { p.Name = v },
	"category":  func(p *ingestion.ProductRow, v string) { p.Category = v },
	"vendor":    func(p *ingestion.ProductRow, v string) { p.Vendor = v },
	"barcode":   func(p *ingestion.ProductRow, v string) { p.Barcode = cleanBarcode(v) },
	"cost":      func(p *ingestion.ProductRow, v string) { p.Cost = ingest.CoerceDecimal(v) },
	"price":     func(p *ingestion.ProductRow, v string) { p.Price = ingest.CoerceDecimal(v) },
	"weight_kg": func(p *ingestion.ProductRow, v string) { p.WeightKg = ingest.CoerceDecimal(v) },
	"hs_code":   func(p *ingestion.ProductRow, v string) { p.HSCode = v },
	"origin":    func(p *ingestion.ProductRow, v string) { p.Origin = strings.ToUpper(v) },
	"status":    func(p *ingestion.ProductRow, v string) { p.Status = strings.ToLower(v) },
}

// isMissingValue recognizes the placeholder strings spreadsheet exports
// use for absent data.
func isMissingValue(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "-", "TBC", "N/A", "NA", "NULL":
		return true
	default:
		return false
	}
}

// cleanBarcode drops barcodes mangled into scientific notation by
// spreadsheet round-trips; a barcode with an exponent is unrecoverable.
func cleanBarcode(v string) string {
	if strings.ContainsAny(v, "eE") && strings.ContainsAny(v, "+") {
		return ""
	}
	return v
}

// ImportCatalog ingests a header-mapped product catalog export.
func (s *Service) ImportCatalog(ctx context.Context, tenantID uuid.UUID, r io.Reader) (*Result, error) {
	reader, err := newReader(r)
	if err != nil {
		return nil, err
	}
	if err := reader.ParseHeader(); err != nil {
		return nil, wrapValidation(err)
	}

	result := &Result{}
	errs := ingest.NewErrorCollection(maxSampleErrors)
	var rows []ingestion.ProductRow

	for {
		fields, rowNum, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		result.RowsTotal++

		row := ingestion.ProductRow{}
		for header, set := range productFieldSetters {
			value := reader.Field(fields, header)
			if isMissingValue(value) {
				continue
			}
			set(&row, value)
		}

		if row.SKU == "" {
			errs.AddRequiredError(rowNum, "sku")
			result.RowsFailed++
			continue
		}
		rows = append(rows, row)
		result.RowsParsed++
	}

	deduped := ingestion.Dedupe(rows)
	result.DuplicatesRemoved = len(rows) - len(deduped)

	written, err := s.repos.Products.UpsertBatch(ctx, tenantID, deduped)
	if err != nil {
		return nil, err
	}
	result.Inserted = written.Inserted
	result.Updated = written.Updated
	result.RowsWritten = written.Written()
	result.SampleErrors = errs.Messages()
	return result, nil
}

// DeactivateProduct flips a catalog entry to inactive. Catalog rows are
// never deleted; this is the only delete-like operation.
func (s *Service) DeactivateProduct(ctx context.Context, tenantID uuid.UUID, sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.ErrInvalidInput
	}
	return s.repos.Products.Deactivate(ctx, tenantID, sku)
}
