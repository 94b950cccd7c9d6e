package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// SettingsRepository implements the report.SettingsRepository interface.
// Tenants without a settings row, or with unset fields, fall back to the
// application-level defaults injected at construction.
type SettingsRepository struct {
	db                *gorm.DB
	defaultThresholds report.LifecycleThresholds
	defaultFees       report.FeeSettings
}

// NewSettingsRepository creates a new settings repository with fallback defaults
func NewSettingsRepository(db *gorm.DB, thresholds report.LifecycleThresholds, fees report.FeeSettings) *SettingsRepository {
	return &SettingsRepository{
		db:                db,
		defaultThresholds: thresholds,
		defaultFees:       fees,
	}
}

// GetLifecycleThresholds returns the tenant's recency boundaries.
func (r *SettingsRepository) GetLifecycleThresholds(ctx context.Context, tenantID uuid.UUID) (report.LifecycleThresholds, error) {
	model, err := r.find(ctx, tenantID)
	if err != nil {
		return report.LifecycleThresholds{}, err
	}

	thresholds := r.defaultThresholds
	if model != nil {
		if model.NewMaxDays > 0 {
			thresholds.NewMaxDays = model.NewMaxDays
		}
		if model.ReorderMaxDays > 0 {
			thresholds.ReorderMaxDays = model.ReorderMaxDays
		}
		if model.LapsedMaxDays > 0 {
			thresholds.LapsedMaxDays = model.LapsedMaxDays
		}
	}
	if err := thresholds.Validate(); err != nil {
		return report.LifecycleThresholds{}, err
	}
	return thresholds, nil
}

// GetFeeSettings returns the tenant's fee configuration. Zero-valued
// columns mean "not overridden" and fall back to defaults.
func (r *SettingsRepository) GetFeeSettings(ctx context.Context, tenantID uuid.UUID) (report.FeeSettings, error) {
	model, err := r.find(ctx, tenantID)
	if err != nil {
		return report.FeeSettings{}, err
	}

	fees := r.defaultFees
	if model != nil {
		if !model.PlatformFeeRate.IsZero() {
			fees.PlatformFeeRate = model.PlatformFeeRate
		}
		if !model.PerOrderFulfilmentFee.IsZero() {
			fees.PerOrderFulfilmentFee = model.PerOrderFulfilmentFee
		}
	}
	return fees, nil
}

func (r *SettingsRepository) find(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettingsModel, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	var model models.TenantSettingsModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model, nil
}
