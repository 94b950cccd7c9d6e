package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/application/commerce"
	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/shared"
)

// Webhook delivery headers, set by the storefront at registration time.
const (
	webhookTopicHeader     = "X-Webhook-Topic"
	webhookSignatureHeader = "X-Webhook-Signature"
)

// WebhookReceiver verifies and applies one webhook delivery.
type WebhookReceiver interface {
	HandleDelivery(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, topic, signature string, body []byte) (*commerce.WebhookResult, error)
}

// WebhookHandler exposes the storefront webhook intake route.
type WebhookHandler struct {
	BaseHandler
	receiver WebhookReceiver
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(receiver WebhookReceiver) *WebhookHandler {
	return &WebhookHandler{receiver: receiver}
}

// RegisterRoutes registers webhook routes. Deliveries authenticate by
// body signature, not by bearer token, so the tenant rides in the path.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/:provider/:tenant_id", h.Receive)
}

// Receive verifies the delivery signature and applies the payload. An
// absent or invalid signature is a 401; the body is read in full first
// because the digest covers the raw bytes.
func (h *WebhookHandler) Receive(c *gin.Context) {
	provider, ok := pathProvider(c)
	if !ok {
		h.BadRequest(c, "Unknown provider")
		return
	}
	tenant, err := uuid.Parse(c.Param("tenant_id"))
	if err != nil || tenant == uuid.Nil {
		h.BadRequest(c, "Tenant id must be a UUID")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	result, err := h.receiver.HandleDelivery(c.Request.Context(), tenant, provider,
		c.GetHeader(webhookTopicHeader), c.GetHeader(webhookSignatureHeader), body)
	if err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Webhook signature missing or invalid")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
