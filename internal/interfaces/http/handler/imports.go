package handler

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appingest "github.com/growthdeck/backend/internal/application/ingest"
	"github.com/growthdeck/backend/internal/domain/connector"
)

// Importer ingests uploaded export files and manages the catalog rows
// they produce.
type Importer interface {
	Import(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, r io.Reader) (*appingest.Result, error)
	DeactivateProduct(ctx context.Context, tenantID uuid.UUID, sku string) error
}

// ImportHandler exposes the file upload route.
type ImportHandler struct {
	BaseHandler
	importer Importer
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer Importer) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// RegisterRoutes registers import routes
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports/:provider", h.Upload)
	rg.POST("/catalog/:sku/deactivate", h.DeactivateProduct)
}

// Upload ingests a raw delimited-text body in the provider's export
// format. Row failures are reported in the result, not as an HTTP error.
func (h *ImportHandler) Upload(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant not identified")
		return
	}
	provider, ok := pathProvider(c)
	if !ok {
		h.BadRequest(c, "Unknown provider")
		return
	}

	result, err := h.importer.Import(c.Request.Context(), tenant, provider, c.Request.Body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeactivateProduct marks a catalog entry inactive. The row is kept so
// historical reports still resolve the SKU.
func (h *ImportHandler) DeactivateProduct(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant not identified")
		return
	}
	sku := c.Param("sku")

	if err := h.importer.DeactivateProduct(c.Request.Context(), tenant, sku); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"sku": sku, "status": "inactive"})
}
