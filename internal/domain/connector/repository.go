package connector

import (
	"context"

	"github.com/google/uuid"
)

// ConnectionRepository provides access to per-tenant provider credentials.
type ConnectionRepository interface {
	// GetConnection returns the tenant's connection for the given provider.
	// Returns ErrProviderNotConfigured when no connection row exists.
	GetConnection(ctx context.Context, tenantID uuid.UUID, provider ProviderCode) (*Connection, error)

	// ListTenantsWithProvider returns the IDs of every tenant that has an
	// enabled connection for the given provider.
	ListTenantsWithProvider(ctx context.Context, provider ProviderCode) ([]uuid.UUID, error)
}
