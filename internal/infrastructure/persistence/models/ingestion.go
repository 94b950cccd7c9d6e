package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdPerformanceModel is the persistence model for one advertising line
// item on one calendar day. The natural key is tenant + date + platform +
// campaign + adset + ad; the upsert conflict target matches the unique
// index exactly.
type AdPerformanceModel struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_ad_rows_natural,priority:1"`
	Date          time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:ux_ad_rows_natural,priority:2"`
	Platform      string          `gorm:"column:platform;size:20;not null;uniqueIndex:ux_ad_rows_natural,priority:3"`
	CampaignID    string          `gorm:"column:campaign_id;size:100;not null;uniqueIndex:ux_ad_rows_natural,priority:4"`
	AdsetID       string          `gorm:"column:adset_id;size:100;not null;uniqueIndex:ux_ad_rows_natural,priority:5"`
	AdID          string          `gorm:"column:ad_id;size:100;not null;uniqueIndex:ux_ad_rows_natural,priority:6"`
	CampaignName  string          `gorm:"column:campaign_name;size:255"`
	AdsetName     string          `gorm:"column:adset_name;size:255"`
	AdName        string          `gorm:"column:ad_name;size:255"`
	Spend         decimal.Decimal `gorm:"column:spend;type:decimal(20,4);default:0"`
	Impressions   int64           `gorm:"column:impressions;default:0"`
	Clicks        int64           `gorm:"column:clicks;default:0"`
	Purchases     int64           `gorm:"column:purchases;default:0"`
	PurchaseValue decimal.Decimal `gorm:"column:purchase_value;type:decimal(20,4);default:0"`
	Reach         int64           `gorm:"column:reach;default:0"`
	Frequency     decimal.Decimal `gorm:"column:frequency;type:decimal(10,4);default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (AdPerformanceModel) TableName() string {
	return "ad_performance_rows"
}

// InventorySnapshotModel is the persistence model for one SKU's stock
// position on one snapshot date.
type InventorySnapshotModel struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_inventory_snapshots_natural,priority:1"`
	SnapshotDate time.Time `gorm:"column:snapshot_date;type:date;not null;uniqueIndex:ux_inventory_snapshots_natural,priority:2"`
	SKU          string    `gorm:"column:sku;size:100;not null;uniqueIndex:ux_inventory_snapshots_natural,priority:3"`
	OnHand       int64     `gorm:"column:on_hand;default:0"`
	Committed    int64     `gorm:"column:committed;default:0"`
	Available    int64     `gorm:"column:available;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (InventorySnapshotModel) TableName() string {
	return "inventory_snapshot_rows"
}

// AnalyticsDayModel is the persistence model for one calendar day of
// site analytics. Exactly one row per day per tenant.
type AnalyticsDayModel struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID        uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_analytics_days_natural,priority:1"`
	Date            time.Time       `gorm:"column:date;type:date;not null;uniqueIndex:ux_analytics_days_natural,priority:2"`
	Sessions        int64           `gorm:"column:sessions;default:0"`
	Pageviews       int64           `gorm:"column:pageviews;default:0"`
	ProductViews    int64           `gorm:"column:product_views;default:0"`
	AddToCart       int64           `gorm:"column:add_to_cart;default:0"`
	CheckoutStarted int64           `gorm:"column:checkout_started;default:0"`
	Purchases       int64           `gorm:"column:purchases;default:0"`
	BounceRate      decimal.Decimal `gorm:"column:bounce_rate;type:decimal(10,4);default:0"`
	OrganicSessions int64           `gorm:"column:organic_sessions;default:0"`
	PaidSessions    int64           `gorm:"column:paid_sessions;default:0"`
	DirectSessions  int64           `gorm:"column:direct_sessions;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (AnalyticsDayModel) TableName() string {
	return "analytics_days"
}
