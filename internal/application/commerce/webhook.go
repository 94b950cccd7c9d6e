// Package commerce handles inbound storefront webhooks: signature
// verification against the tenant's shared secret, then normalization of
// the payload into the idempotent order store.
package commerce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// WebhookService verifies and applies storefront webhook deliveries.
type WebhookService struct {
	connections connector.ConnectionRepository
	orders      ingestion.OrderRepository
	logger      *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(connections connector.ConnectionRepository, orders ingestion.OrderRepository, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{connections: connections, orders: orders, logger: logger}
}

// WebhookResult reports what one delivery changed.
type WebhookResult struct {
	Topic       string `json:"topic"`
	RowsWritten int    `json:"rowsWritten"`
	Reflagged   int    `json:"reflagged,omitempty"`
}

// orderPayload is the storefront's order webhook body. Only the fields
// the canonical row needs are decoded.
type orderPayload struct {
	ID              json.Number `json:"id"`
	CreatedAt       string      `json:"created_at"`
	TotalPrice      string      `json:"total_price"`
	Currency        string      `json:"currency"`
	Email           string      `json:"email"`
	FinancialStatus string      `json:"financial_status"`
}

// HandleDelivery verifies the delivery signature and routes the payload by
// topic. A missing or mismatched signature is an authentication failure;
// the body is never processed in that case.
func (s *WebhookService) HandleDelivery(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, topic, signature string, body []byte) (*WebhookResult, error) {
	conn, err := s.connections.GetConnection(ctx, tenantID, provider)
	if err != nil {
		if err == connector.ErrProviderNotConfigured {
			return nil, shared.ErrAuthFailed
		}
		return nil, err
	}
	if conn.AppSecret == "" || !VerifySignature(conn.AppSecret, body, signature) {
		s.logger.Warn("webhook signature rejected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("provider", string(provider)),
			zap.String("topic", topic))
		return nil, shared.ErrAuthFailed
	}

	switch {
	case strings.HasPrefix(topic, "orders/"):
		return s.applyOrder(ctx, tenantID, topic, body)
	case strings.HasPrefix(topic, "customers/"):
		return s.applyCustomer(ctx, tenantID, topic)
	default:
		return nil, shared.ErrInvalidInput
	}
}

// VerifySignature checks an HMAC-SHA256 digest of body against the
// delivered signature using a constant-time compare. The signature may be
// base64 or hex encoded.
func VerifySignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	if decoded, err := hex.DecodeString(signature); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	return false
}

// Signature computes the base64 HMAC-SHA256 digest a sender attaches to a
// delivery. Exposed for tests and for replaying stored deliveries.
func Signature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *WebhookService) applyOrder(ctx context.Context, tenantID uuid.UUID, topic string, body []byte) (*WebhookResult, error) {
	var payload orderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, shared.ErrValidation
	}
	if payload.ID.String() == "" {
		return nil, shared.ErrValidation
	}
	orderedAt, err := time.Parse(time.RFC3339, payload.CreatedAt)
	if err != nil {
		return nil, shared.ErrValidation
	}

	total, err := decimal.NewFromString(payload.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}

	row := ingestion.OrderRow{
		ExternalID:      payload.ID.String(),
		OrderedAt:       orderedAt.UTC(),
		Total:           total,
		Currency:        payload.Currency,
		Email:           ingestion.NormalizeEmail(payload.Email),
		FinancialStatus: payload.FinancialStatus,
	}

	written, err := s.orders.UpsertBatch(ctx, tenantID, []ingestion.OrderRow{row})
	if err != nil {
		return nil, err
	}

	s.logger.Info("webhook order applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("topic", topic),
		zap.String("external_id", row.ExternalID))
	return &WebhookResult{Topic: topic, RowsWritten: written.Written()}, nil
}

// applyCustomer re-derives the repeat-customer flags. The order table is
// the only customer-derived state the core owns, so a customer mutation
// only needs the recency flags refreshed.
func (s *WebhookService) applyCustomer(ctx context.Context, tenantID uuid.UUID, topic string) (*WebhookResult, error) {
	changed, err := s.orders.RecalculateRepeatCustomers(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &WebhookResult{Topic: topic, Reflagged: changed}, nil
}
