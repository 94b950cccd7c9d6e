// Package models contains the GORM persistence models. Every core table
// carries tenant_id as the leading column of its unique index so batch
// upserts and reads stay tenant-scoped at the schema level.
package models

// AllModels returns every model for auto-migration, ordered so that
// tables without references migrate first.
func AllModels() []interface{} {
	return []interface{}{
		&ProviderConnectionModel{},
		&TenantSettingsModel{},
		&AdPerformanceModel{},
		&InventorySnapshotModel{},
		&AnalyticsDayModel{},
		&OrderModel{},
		&ProductModel{},
		&SyncLogModel{},
	}
}
