package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProviderConnectionModel is the persistence model for one tenant's
// credentials against one upstream provider.
type ProviderConnectionModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_provider_connections,priority:1"`
	Provider    string    `gorm:"column:provider;size:20;not null;uniqueIndex:ux_provider_connections,priority:2"`
	Host        string    `gorm:"column:host;size:255"`
	AccessToken string    `gorm:"column:access_token;size:512"`
	AppSecret   string    `gorm:"column:app_secret;size:512"`
	Enabled     bool      `gorm:"column:enabled;default:false;index:ix_provider_connections_enabled"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (ProviderConnectionModel) TableName() string {
	return "provider_connections"
}

// TenantSettingsModel holds per-tenant reporting overrides. Absent rows
// fall back to the configured application defaults.
type TenantSettingsModel struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID              uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_tenant_settings"`
	NewMaxDays            int             `gorm:"column:new_max_days;default:0"`
	ReorderMaxDays        int             `gorm:"column:reorder_max_days;default:0"`
	LapsedMaxDays         int             `gorm:"column:lapsed_max_days;default:0"`
	PlatformFeeRate       decimal.Decimal `gorm:"column:platform_fee_rate;type:decimal(10,6);default:0"`
	PerOrderFulfilmentFee decimal.Decimal `gorm:"column:per_order_fulfilment_fee;type:decimal(20,4);default:0"`
	CreatedAt             time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (TenantSettingsModel) TableName() string {
	return "tenant_settings"
}

// SyncLogModel records one completed ingestion run per tenant and source.
type SyncLogModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index:ix_sync_logs_tenant_source,priority:1"`
	Source    string    `gorm:"column:source;size:50;not null;index:ix_sync_logs_tenant_source,priority:2"`
	Status    string    `gorm:"column:status;size:20;not null"`
	SyncedAt  time.Time `gorm:"column:synced_at;not null;index:ix_sync_logs_synced_at,sort:desc"`
	Detail    string    `gorm:"column:detail;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName returns the table name
func (SyncLogModel) TableName() string {
	return "sync_logs"
}
