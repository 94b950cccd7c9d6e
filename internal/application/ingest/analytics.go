package ingest

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/ingest"
)

// Analytics exports are header-mapped, one row per calendar day.
var analyticsFieldSetters = map[string]func(*ingestion.DailyAnalyticsRow, string){
	"sessions":         func(d *ingestion.DailyAnalyticsRow, v string) { d.Sessions = ingest.CoerceInt64(v) },
	"pageviews":        func(d *ingestion.DailyAnalyticsRow, v string) { d.Pageviews = ingest.CoerceInt64(v) },
	"product_views":    func(d *ingestion.DailyAnalyticsRow, v string) { d.ProductViews = ingest.CoerceInt64(v) },
	"add_to_cart":      func(d *ingestion.DailyAnalyticsRow, v string) { d.AddToCart = ingest.CoerceInt64(v) },
	"checkout_started": func(d *ingestion.DailyAnalyticsRow, v string) { d.CheckoutStarted = ingest.CoerceInt64(v) },
	"purchases":        func(d *ingestion.DailyAnalyticsRow, v string) { d.Purchases = ingest.CoerceInt64(v) },
	"bounce_rate":      func(d *ingestion.DailyAnalyticsRow, v string) { d.BounceRate = ingest.CoerceDecimal(v) },
	"organic_sessions": func(d *ingestion.DailyAnalyticsRow, v string) { d.OrganicSessions = ingest.CoerceInt64(v) },
	"paid_sessions":    func(d *ingestion.DailyAnalyticsRow, v string) { d.PaidSessions = ingest.CoerceInt64(v) },
	"direct_sessions":  func(d *ingestion.DailyAnalyticsRow, v string) { d.DirectSessions = ingest.CoerceInt64(v) },
}

// ImportAnalytics ingests a header-mapped daily analytics export.
func (s *Service) ImportAnalytics(ctx context.Context, tenantID uuid.UUID, r io.Reader) (*Result, error) {
	reader, err := newReader(r)
	if err != nil {
		return nil, err
	}
	if err := reader.ParseHeader(); err != nil {
		return nil, wrapValidation(err)
	}

	result := &Result{}
	errs := ingest.NewErrorCollection(maxSampleErrors)
	var rows []ingestion.DailyAnalyticsRow

	for {
		fields, rowNum, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		result.RowsTotal++

		rawDate := reader.Field(fields, "date")
		date, err := ingest.ParseDate(rawDate)
		if err != nil {
			errs.AddFormatError(rowNum, "date", "YYYY-MM-DD", rawDate)
			result.RowsFailed++
			continue
		}

		row := ingestion.DailyAnalyticsRow{Date: date}
		for header, set := range analyticsFieldSetters {
			if value := reader.Field(fields, header); value != "" {
				set(&row, value)
			}
		}
		rows = append(rows, row)
		result.RowsParsed++
	}

	deduped := ingestion.Dedupe(rows)
	result.DuplicatesRemoved = len(rows) - len(deduped)

	written, err := s.repos.Analytics.UpsertBatch(ctx, tenantID, deduped)
	if err != nil {
		return nil, err
	}
	result.Inserted = written.Inserted
	result.Updated = written.Updated
	result.RowsWritten = written.Written()
	result.SampleErrors = errs.Messages()
	return result, nil
}
