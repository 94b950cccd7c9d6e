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

// FulfilbayAdapter pulls warehouse stock snapshots from the fulfillment
// API. Pages are numbered and the response flags whether more follow.
type FulfilbayAdapter struct {
	opts Options
}

// NewFulfilbayAdapter creates a new fulfillment adapter
func NewFulfilbayAdapter(opts Options) *FulfilbayAdapter {
	return &FulfilbayAdapter{opts: opts.withDefaults()}
}

// ProviderCode returns the provider this adapter handles
func (a *FulfilbayAdapter) ProviderCode() connector.ProviderCode {
	return connector.ProviderFulfilbay
}

type fulfilbaySnapshot struct {
	SKU       string `json:"sku"`
	OnHand    int64  `json:"on_hand"`
	Committed int64  `json:"committed"`
	Available int64  `json:"available"`
}

type fulfilbaySnapshotsResponse struct {
	Items   []fulfilbaySnapshot `json:"items"`
	HasMore bool                `json:"has_more"`
}

// FetchSnapshots pulls every SKU's stock position for one snapshot date.
func (a *FulfilbayAdapter) FetchSnapshots(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.InventorySnapshotRow, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	date := day.Format(ingestion.DateLayout)
	var rows []ingestion.InventorySnapshotRow
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("date", date)
		q.Set("page", fmt.Sprintf("%d", page))
		q.Set("per_page", fmt.Sprintf("%d", a.opts.PageSize))

		body, err := doGet(ctx, a.opts.Client, conn.Provider,
			conn.Host+"/api/inventory/snapshots?"+q.Encode(),
			map[string]string{"Authorization": "Bearer " + conn.AccessToken})
		if err != nil {
			return rows, err
		}

		var resp fulfilbaySnapshotsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return rows, fmt.Errorf("%w: %v", connector.ErrProviderInvalidResponse, err)
		}

		for _, item := range resp.Items {
			if item.SKU == "" {
				continue
			}
			rows = append(rows, ingestion.InventorySnapshotRow{
				SnapshotDate: day,
				SKU:          item.SKU,
				OnHand:       item.OnHand,
				Committed:    item.Committed,
				Available:    item.Available,
			})
		}

		if !resp.HasMore {
			return rows, nil
		}
		if err := pauseBetweenPages(ctx, a.opts.InterPageDelay); err != nil {
			return rows, err
		}
	}
	return rows, fmt.Errorf("%w: snapshot paging did not terminate", connector.ErrProviderInvalidResponse)
}
