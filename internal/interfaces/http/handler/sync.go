package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/growthdeck/backend/internal/application/sync"
	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/ingestion"
	"github.com/growthdeck/backend/internal/interfaces/http/dto"
)

// SyncRunner drives provider pulls for the sync routes.
type SyncRunner interface {
	RunBackfill(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, from, to time.Time) (*appsync.BackfillResult, error)
	RunSweep(ctx context.Context, provider connector.ProviderCode, day time.Time) (*appsync.BackfillResult, error)
}

// SyncHandler exposes backfill, sweep and audit log routes.
type SyncHandler struct {
	BaseHandler
	runner   SyncRunner
	syncLogs ingestion.SyncLogRepository
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(runner SyncRunner, syncLogs ingestion.SyncLogRepository) *SyncHandler {
	return &SyncHandler{runner: runner, syncLogs: syncLogs}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/:provider/backfill", h.Backfill)
		sync.POST("/:provider/sweep", h.Sweep)
		sync.GET("/logs", h.ListLogs)
	}
}

type backfillRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// Backfill pulls the provider's history for an inclusive date range.
func (h *SyncHandler) Backfill(c *gin.Context) {
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

	var req backfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Body must carry from and to dates")
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		h.BadRequest(c, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		h.BadRequest(c, "to must be YYYY-MM-DD")
		return
	}

	result, err := h.runner.RunBackfill(c.Request.Context(), tenant, provider, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

type sweepRequest struct {
	Date string `json:"date"`
}

// Sweep pulls one day for every tenant with the provider enabled. The
// date defaults to yesterday, the first day guaranteed complete upstream.
func (h *SyncHandler) Sweep(c *gin.Context) {
	provider, ok := pathProvider(c)
	if !ok {
		h.BadRequest(c, "Unknown provider")
		return
	}

	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, "Malformed request body")
		return
	}

	day := time.Now().UTC().AddDate(0, 0, -1)
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			h.BadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	result, err := h.runner.RunSweep(c.Request.Context(), provider, day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListLogs pages through the tenant's sync audit trail, newest first.
func (h *SyncHandler) ListLogs(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant not identified")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Malformed query parameters")
		return
	}
	req.Normalize()

	entries, total, err := h.syncLogs.List(c.Request.Context(), tenant, req.Source, req.PageSize, req.Offset())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, req.Page, req.PageSize)
}
