package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for a storefront order. The
// external ID is the storefront's own order identifier and is unique
// per tenant.
type OrderModel struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID         uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_orders_external,priority:1;index:ix_orders_email,priority:1"`
	ExternalID       string          `gorm:"column:external_id;size:100;not null;uniqueIndex:ux_orders_external,priority:2"`
	OrderedAt        time.Time       `gorm:"column:ordered_at;not null"`
	Total            decimal.Decimal `gorm:"column:total;type:decimal(20,4);default:0"`
	Currency         string          `gorm:"column:currency;size:10"`
	Email            string          `gorm:"column:email;size:255;index:ix_orders_email,priority:2"`
	FinancialStatus  string          `gorm:"column:financial_status;size:50"`
	IsRepeatCustomer bool            `gorm:"column:is_repeat_customer;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (OrderModel) TableName() string {
	return "orders"
}

// ProductModel is the persistence model for a catalog product keyed by
// SKU. Optional trade attributes are empty strings when the source had
// no usable value.
type ProductModel struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_products_sku,priority:1"`
	SKU       string          `gorm:"column:sku;size:100;not null;uniqueIndex:ux_products_sku,priority:2"`
	Name      string          `gorm:"column:name;size:255;not null"`
	Category  string          `gorm:"column:category;size:100"`
	Vendor    string          `gorm:"column:vendor;size:100"`
	Barcode   string          `gorm:"column:barcode;size:100"`
	Cost      decimal.Decimal `gorm:"column:cost;type:decimal(20,4);default:0"`
	Price     decimal.Decimal `gorm:"column:price;type:decimal(20,4);default:0"`
	WeightKg  decimal.Decimal `gorm:"column:weight_kg;type:decimal(10,4);default:0"`
	HSCode    string          `gorm:"column:hs_code;size:20"`
	Origin    string          `gorm:"column:origin;size:10"`
	Status    string          `gorm:"column:status;size:20;default:active"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
	UpdatedAt time.Time       `gorm:"column:updated_at;not null"`
}

// TableName returns the table name
func (ProductModel) TableName() string {
	return "products"
}
