package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/infrastructure/ingest"
)

// Ad export column layout. Advertising exports carry no header row; the
// column order is fixed by the provider's report template.
const (
	adColDate = iota
	adColCampaignID
	adColCampaignName
	adColAdsetID
	adColAdsetName
	adColAdID
	adColAdName
	adColSpend
	adColImpressions
	adColClicks
	adColPurchases
	adColPurchaseValue
	adColReach     // optional
	adColFrequency // optional
	adColMin       = adColPurchaseValue + 1
)

// ImportAds ingests a positional advertising export. The platform is the
// uppercase provider code the upload was posted under.
func (s *Service) ImportAds(ctx context.Context, tenantID uuid.UUID, platform string, r io.Reader) (*Result, error) {
	reader, err := newReader(r)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	errs := ingest.NewErrorCollection(maxSampleErrors)
	var rows []ingestion.AdPerformanceRow

	for {
		fields, rowNum, err := reader.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		result.RowsTotal++
		if len(fields) < adColMin {
			errs.AddMalformedError(rowNum, fmt.Sprintf("expected at least %d columns, got %d", adColMin, len(fields)))
			result.RowsFailed++
			continue
		}

		date, err := ingest.ParseDate(fields[adColDate])
		if err != nil {
			errs.AddFormatError(rowNum, "date", "YYYY-MM-DD", fields[adColDate])
			result.RowsFailed++
			continue
		}

		row := ingestion.AdPerformanceRow{
			Date:          date,
			Platform:      platform,
			CampaignID:    fields[adColCampaignID],
			CampaignName:  fields[adColCampaignName],
			AdsetID:       fields[adColAdsetID],
			AdsetName:     fields[adColAdsetName],
			AdID:          fields[adColAdID],
			AdName:        fields[adColAdName],
			Spend:         ingest.CoerceDecimal(fields[adColSpend]),
			Impressions:   ingest.CoerceInt64(fields[adColImpressions]),
			Clicks:        ingest.CoerceInt64(fields[adColClicks]),
			Purchases:     ingest.CoerceInt64(fields[adColPurchases]),
			PurchaseValue: ingest.CoerceDecimal(fields[adColPurchaseValue]),
		}
		if len(fields) > adColReach {
			row.Reach = ingest.CoerceInt64(fields[adColReach])
		}
		if len(fields) > adColFrequency {
			row.Frequency = ingest.CoerceDecimal(fields[adColFrequency])
		}

		rows = append(rows, row)
		result.RowsParsed++
	}

	deduped := ingestion.Dedupe(rows)
	result.DuplicatesRemoved = len(rows) - len(deduped)

	written, err := s.repos.Ads.UpsertBatch(ctx, tenantID, deduped)
	if err != nil {
		return nil, err
	}
	result.Inserted = written.Inserted
	result.Updated = written.Updated
	result.RowsWritten = written.Written()
	result.SampleErrors = errs.Messages()
	return result, nil
}
