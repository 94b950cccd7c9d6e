package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/models"
	"github.com/growthdeck/backend/internal/infrastructure/persistence/tenant"
)

// ConnectionRepository implements the connector.ConnectionRepository interface
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// GetConnection returns the tenant's credentials for one provider.
func (r *ConnectionRepository) GetConnection(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode) (*connector.Connection, error) {
	if tenantID == uuid.Nil {
		return nil, tenant.ErrTenantIDRequired
	}

	var model models.ProviderConnectionModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("provider = ?", provider.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, connector.ErrProviderNotConfigured
		}
		return nil, err
	}

	return &connector.Connection{
		TenantID:    model.TenantID,
		Provider:    provider,
		Host:        model.Host,
		AccessToken: model.AccessToken,
		AppSecret:   model.AppSecret,
		Enabled:     model.Enabled,
	}, nil
}

// ListTenantsWithProvider returns every tenant with an enabled connection
// for the given provider. Used for fan-out sources that pull all tenants
// in one run.
func (r *ConnectionRepository) ListTenantsWithProvider(ctx context.Context, provider connector.ProviderCode) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProviderConnectionModel{}).
		Where("provider = ? AND enabled = ?", provider.String(), true).
		Order("tenant_id ASC").
		Pluck("tenant_id", &tenantIDs).Error
	if err != nil {
		return nil, err
	}
	return tenantIDs, nil
}
