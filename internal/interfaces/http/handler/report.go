package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appreport "github.com/growthdeck/backend/internal/application/report"
	"github.com/growthdeck/backend/internal/domain/report"
)

// Reporter computes bucketed and lifecycle reports.
type Reporter interface {
	RunReport(ctx context.Context, tenantID uuid.UUID, from, to time.Time, grain report.Grain) (*appreport.Report, error)
	RunLifecycleReport(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*appreport.LifecycleReport, error)
}

// ReportHandler exposes the read-side reporting routes.
type ReportHandler struct {
	BaseHandler
	reporter Reporter
}

// NewReportHandler creates a new report handler
func NewReportHandler(reporter Reporter) *ReportHandler {
	return &ReportHandler{reporter: reporter}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("", h.GetReport)
		reports.GET("/lifecycle", h.GetLifecycle)
	}
}

// GetReport returns the bucketed cross-source series for a date range.
// Grain defaults to day.
func (h *ReportHandler) GetReport(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant not identified")
		return
	}

	from, err := parseDate(c.Query("from"))
	if err != nil {
		h.BadRequest(c, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		h.BadRequest(c, "to must be YYYY-MM-DD")
		return
	}

	grain := report.Grain(c.DefaultQuery("grain", string(report.GrainDay)))

	result, err := h.reporter.RunReport(c.Request.Context(), tenant, from, to, grain)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetLifecycle returns the customer recency partition as of now.
func (h *ReportHandler) GetLifecycle(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		h.BadRequest(c, "Tenant not identified")
		return
	}

	result, err := h.reporter.RunLifecycleReport(c.Request.Context(), tenant, time.Now().UTC())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
