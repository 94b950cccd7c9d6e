package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
)

// maxPages bounds any cursor loop; a provider that pages past this is
// returning a broken cursor.
const maxPages = 1000

// ShopfrontAdapter pulls orders and the product catalog from the
// storefront API. Both endpoints page with an opaque cursor echoed back
// as page_info.
type ShopfrontAdapter struct {
	opts Options
}

// NewShopfrontAdapter creates a new storefront adapter
func NewShopfrontAdapter(opts Options) *ShopfrontAdapter {
	return &ShopfrontAdapter{opts: opts.withDefaults()}
}

// ProviderCode returns the provider this adapter handles
func (a *ShopfrontAdapter) ProviderCode() connector.ProviderCode {
	return connector.ProviderShopfront
}

type shopfrontOrder struct {
	ID              string `json:"id"`
	CreatedAt       string `json:"created_at"`
	TotalPrice      string `json:"total_price"`
	Currency        string `json:"currency"`
	Email           string `json:"email"`
	FinancialStatus string `json:"financial_status"`
}

type shopfrontOrdersResponse struct {
	Orders       []shopfrontOrder `json:"orders"`
	NextPageInfo string           `json:"next_page_info"`
}

type shopfrontProduct struct {
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Category string `json:"product_type"`
	Vendor   string `json:"vendor"`
	Barcode  string `json:"barcode"`
	Cost     string `json:"cost"`
	Price    string `json:"price"`
	WeightKg string `json:"weight_kg"`
	Status   string `json:"status"`
}

type shopfrontProductsResponse struct {
	Products     []shopfrontProduct `json:"products"`
	NextPageInfo string             `json:"next_page_info"`
}

// FetchOrders pulls every order created on the given day.
func (a *ShopfrontAdapter) FetchOrders(ctx context.Context, conn *connector.Connection, day time.Time) ([]ingestion.OrderRow, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var rows []ingestion.OrderRow
	pageInfo := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("created_at_min", dayStart.Format(time.RFC3339))
		q.Set("created_at_max", dayEnd.Format(time.RFC3339))
		q.Set("limit", fmt.Sprintf("%d", a.opts.PageSize))
		if pageInfo != "" {
			q.Set("page_info", pageInfo)
		}

		body, err := doGet(ctx, a.opts.Client, conn.Provider,
			conn.Host+"/admin/api/orders.json?"+q.Encode(), a.headers(conn))
		if err != nil {
			return rows, err
		}

		var resp shopfrontOrdersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return rows, fmt.Errorf("%w: %v", connector.ErrProviderInvalidResponse, err)
		}

		for _, o := range resp.Orders {
			row, err := normalizeShopfrontOrder(o)
			if err != nil {
				return rows, err
			}
			rows = append(rows, row)
		}

		if resp.NextPageInfo == "" {
			return rows, nil
		}
		pageInfo = resp.NextPageInfo
		if err := pauseBetweenPages(ctx, a.opts.InterPageDelay); err != nil {
			return rows, err
		}
	}
	return rows, fmt.Errorf("%w: cursor did not terminate", connector.ErrProviderInvalidResponse)
}

// FetchProducts pulls the full product catalog.
func (a *ShopfrontAdapter) FetchProducts(ctx context.Context, conn *connector.Connection) ([]ingestion.ProductRow, error) {
	if err := conn.Validate(); err != nil {
		return nil, err
	}

	var rows []ingestion.ProductRow
	pageInfo := ""
	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("limit", fmt.Sprintf("%d", a.opts.PageSize))
		if pageInfo != "" {
			q.Set("page_info", pageInfo)
		}

		body, err := doGet(ctx, a.opts.Client, conn.Provider,
			conn.Host+"/admin/api/products.json?"+q.Encode(), a.headers(conn))
		if err != nil {
			return rows, err
		}

		var resp shopfrontProductsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return rows, fmt.Errorf("%w: %v", connector.ErrProviderInvalidResponse, err)
		}

		for _, p := range resp.Products {
			if p.SKU == "" {
				continue
			}
			rows = append(rows, ingestion.ProductRow{
				SKU:      p.SKU,
				Name:     p.Title,
				Category: p.Category,
				Vendor:   p.Vendor,
				Barcode:  p.Barcode,
				Cost:     parseDecimalOrZero(p.Cost),
				Price:    parseDecimalOrZero(p.Price),
				WeightKg: parseDecimalOrZero(p.WeightKg),
				Status:   p.Status,
			})
		}

		if resp.NextPageInfo == "" {
			return rows, nil
		}
		pageInfo = resp.NextPageInfo
		if err := pauseBetweenPages(ctx, a.opts.InterPageDelay); err != nil {
			return rows, err
		}
	}
	return rows, fmt.Errorf("%w: cursor did not terminate", connector.ErrProviderInvalidResponse)
}

func (a *ShopfrontAdapter) headers(conn *connector.Connection) map[string]string {
	return map[string]string{"X-Shopfront-Access-Token": conn.AccessToken}
}

func normalizeShopfrontOrder(o shopfrontOrder) (ingestion.OrderRow, error) {
	if o.ID == "" {
		return ingestion.OrderRow{}, fmt.Errorf("%w: order without id", connector.ErrProviderInvalidResponse)
	}
	orderedAt, err := time.Parse(time.RFC3339, o.CreatedAt)
	if err != nil {
		return ingestion.OrderRow{}, fmt.Errorf("%w: bad order timestamp %q", connector.ErrProviderInvalidResponse, o.CreatedAt)
	}
	return ingestion.OrderRow{
		ExternalID:      o.ID,
		OrderedAt:       orderedAt.UTC(),
		Total:           parseDecimalOrZero(o.TotalPrice),
		Currency:        o.Currency,
		Email:           ingestion.NormalizeEmail(o.Email),
		FinancialStatus: o.FinancialStatus,
	}, nil
}

// parseDecimalOrZero tolerates absent or malformed money strings
func parseDecimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
