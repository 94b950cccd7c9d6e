package commerce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockConnections struct{ mock.Mock }

func (m *mockConnections) GetConnection(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode) (*connector.Connection, error) {
	args := m.Called(ctx, tenantID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.Connection), args.Error(1)
}

func (m *mockConnections) ListTenantsWithProvider(ctx context.Context, provider connector.ProviderCode) ([]uuid.UUID, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) UpsertBatch(ctx context.Context, tenantID uuid.UUID, rows []ingestion.OrderRow) (ingestion.WriteResult, error) {
	args := m.Called(ctx, tenantID, rows)
	return args.Get(0).(ingestion.WriteResult), args.Error(1)
}

func (m *mockOrderRepo) RecalculateRepeatCustomers(ctx context.Context, tenantID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

func testConnection(tenantID uuid.UUID, secret string) *connector.Connection {
	return &connector.Connection{
		TenantID:    tenantID,
		Provider:    connector.ProviderShopfront,
		Host:        "demo.shopfront.test",
		AccessToken: "tok",
		AppSecret:   secret,
		Enabled:     true,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleDeliveryAppliesOrder(t *testing.T) {
	conns := &mockConnections{}
	orders := &mockOrderRepo{}
	tenantID := uuid.New()
	secret := "whsec"

	body := []byte(`{
		"id": 9001,
		"created_at": "2025-01-05T10:30:00Z",
		"total_price": "149.90",
		"currency": "EUR",
		"email": "  Buyer@Example.COM ",
		"financial_status": "paid"
	}`)

	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).
		Return(testConnection(tenantID, secret), nil)

	var stored []ingestion.OrderRow
	orders.On("UpsertBatch", mock.Anything, tenantID, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).([]ingestion.OrderRow)
		}).
		Return(ingestion.WriteResult{Inserted: 1}, nil)

	s := NewWebhookService(conns, orders, nil)
	result, err := s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"orders/create", Signature(secret, body), body)
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsWritten)
	require.Len(t, stored, 1)
	assert.Equal(t, "9001", stored[0].ExternalID)
	assert.Equal(t, "buyer@example.com", stored[0].Email)
	assert.Equal(t, "149.9", stored[0].Total.String())
	assert.Equal(t, "paid", stored[0].FinancialStatus)
}

func TestHandleDeliveryRejectsBadSignature(t *testing.T) {
	conns := &mockConnections{}
	orders := &mockOrderRepo{}
	tenantID := uuid.New()

	body := []byte(`{"id": 1, "created_at": "2025-01-05T10:30:00Z"}`)
	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).
		Return(testConnection(tenantID, "whsec"), nil)

	s := NewWebhookService(conns, orders, nil)

	_, err := s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"orders/create", Signature("wrong-secret", body), body)
	assert.ErrorIs(t, err, shared.ErrAuthFailed)

	_, err = s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"orders/create", "", body)
	assert.ErrorIs(t, err, shared.ErrAuthFailed)

	orders.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDeliveryUnconfiguredProvider(t *testing.T) {
	conns := &mockConnections{}
	tenantID := uuid.New()

	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).
		Return(nil, connector.ErrProviderNotConfigured)

	s := NewWebhookService(conns, &mockOrderRepo{}, nil)
	_, err := s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"orders/create", "sig", []byte(`{}`))
	assert.ErrorIs(t, err, shared.ErrAuthFailed)
}

func TestHandleDeliveryCustomerTopicReflags(t *testing.T) {
	conns := &mockConnections{}
	orders := &mockOrderRepo{}
	tenantID := uuid.New()
	secret := "whsec"
	body := []byte(`{"id": 77, "email": "buyer@example.com"}`)

	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).
		Return(testConnection(tenantID, secret), nil)
	orders.On("RecalculateRepeatCustomers", mock.Anything, tenantID).Return(2, nil)

	s := NewWebhookService(conns, orders, nil)
	result, err := s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"customers/update", Signature(secret, body), body)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Reflagged)
}

func TestHandleDeliveryMalformedOrderBody(t *testing.T) {
	conns := &mockConnections{}
	tenantID := uuid.New()
	secret := "whsec"
	body := []byte(`{"id": 5, "created_at": "not-a-timestamp"}`)

	conns.On("GetConnection", mock.Anything, tenantID, connector.ProviderShopfront).
		Return(testConnection(tenantID, secret), nil)

	s := NewWebhookService(conns, &mockOrderRepo{}, nil)
	_, err := s.HandleDelivery(context.Background(), tenantID, connector.ProviderShopfront,
		"orders/create", Signature(secret, body), body)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestVerifySignatureEncodings(t *testing.T) {
	body := []byte(`payload`)
	secret := "s3cret"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	hexSig := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifySignature(secret, body, Signature(secret, body)))
	assert.True(t, VerifySignature(secret, body, hexSig))
	assert.False(t, VerifySignature(secret, body, "not-a-digest"))
}
