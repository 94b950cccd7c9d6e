package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
)

// SearchAdsAdapter pulls daily campaign reports from the search ads API.
// Pages are numbered from 1 and the response carries the total page count.
// The report has no purchase value column; it is derived from ROAS and
// spend during normalization.
type SearchAdsAdapter struct {
	opts Options
}

// NewSearchAdsAdapter creates a new search ads adapter
func NewSearchAdsAdapter(opts Options) *SearchAdsAdapter {
	return &SearchAdsAdapter{opts: opts.withDefaults()}
}

// ProviderCode returns the provider this adapter handles
func (a *SearchAdsAdapter) ProviderCode() connector.ProviderCode {
	return connector.ProviderSearchAds
}

type searchAdsReportRow struct {
	Date         string `json:"date"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	AdGroupID    string `json:"ad_group_id"`
	AdGroupName  string `json:"ad_group_name"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
	Cost         string `json:"cost"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	Conversions  string `json:"conversions"`
	ROAS         string `json:"roas"`
}

type searchAdsReportResponse struct {
	Rows       []searchAdsReportRow `json:"rows"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
}

// FetchReport pulls the full daily report for one day.
func (a *SearchAdsAdapter) FetchReport(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.AdPerformanceRow, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	date := day.Format(ingestion.DateLayout)
	var rows []ingestion.AdPerformanceRow
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("date", date)
		q.Set("page", fmt.Sprintf("%d", page))
		q.Set("page_size", fmt.Sprintf("%d", a.opts.PageSize))

		body, err := doGet(ctx, a.opts.Client, conn.Provider,
			conn.Host+"/reports/daily?"+q.Encode(),
			map[string]string{"Authorization": "Bearer " + conn.AccessToken})
		if err != nil {
			return rows, err
		}

		var resp searchAdsReportResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return rows, fmt.Errorf("%w: %v", connector.ErrProviderInvalidResponse, err)
		}

		for _, r := range resp.Rows {
			row, err := normalizeSearchAdsRow(r, day)
			if err != nil {
				return rows, err
			}
			rows = append(rows, row)
		}

		if page >= resp.TotalPages {
			return rows, nil
		}
		if err := pauseBetweenPages(ctx, a.opts.InterPageDelay); err != nil {
			return rows, err
		}
	}
	return rows, fmt.Errorf("%w: report paging did not terminate", connector.ErrProviderInvalidResponse)
}

func normalizeSearchAdsRow(r searchAdsReportRow, day time.Time) (ingestion.AdPerformanceRow, error) {
	if r.CampaignID == "" {
		return ingestion.AdPerformanceRow{}, fmt.Errorf("%w: report row without campaign_id", connector.ErrProviderInvalidResponse)
	}
	date := day
	if r.Date != "" {
		parsed, err := time.Parse(ingestion.DateLayout, r.Date)
		if err != nil {
			return ingestion.AdPerformanceRow{}, fmt.Errorf("%w: bad report date %q", connector.ErrProviderInvalidResponse, r.Date)
		}
		date = parsed
	}

	row := ingestion.AdPerformanceRow{
		Date:         date,
		Platform:     connector.ProviderSearchAds.String(),
		CampaignID:   r.CampaignID,
		CampaignName: r.CampaignName,
		AdsetID:      r.AdGroupID,
		AdsetName:    r.AdGroupName,
		AdID:         r.AdID,
		AdName:       r.AdName,
		Spend:        parseDecimalOrZero(r.Cost),
		Impressions:  parseInt64OrZero(r.Impressions),
		Clicks:       parseInt64OrZero(r.Clicks),
		Purchases:    parseInt64OrZero(r.Conversions),
	}
	row.DerivePurchaseValue(parseDecimalOrZero(r.ROAS))
	return row, nil
}
