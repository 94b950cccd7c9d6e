// Package tenant provides multi-tenant database scoping for GORM.
//
// Every core table carries tenant_id as the leading column of its natural
// key; this package applies the WHERE tenant_id = ? condition so
// repositories cannot accidentally read or write across tenants.
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a tenant scope is requested with a
// nil tenant ID
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope applies tenant filtering to GORM queries
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// DB wraps a GORM handle with mandatory tenant scoping
type DB struct {
	db *gorm.DB
}

// NewDB creates a tenant-scoping wrapper
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// WithTenant returns a GORM DB scoped to a specific tenant ID. A nil
// tenant yields a DB that errors on any operation rather than leaking
// cross-tenant rows.
func (t *DB) WithTenant(tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db.Session(&gorm.Session{})
		_ = db.AddError(ErrTenantIDRequired)
		return db
	}
	return t.db.Scopes(Scope(tenantID))
}

// Unscoped returns the underlying DB without tenant scoping. Only for
// system-level operations such as cross-tenant enumeration and migrations.
func (t *DB) Unscoped() *gorm.DB {
	return t.db
}
