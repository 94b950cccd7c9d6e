package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/domain/shared"
	"github.com/growthdeck/backend/internal/interfaces/http/dto"
	"github.com/growthdeck/backend/internal/interfaces/http/middleware"
)

// dateLayout is the wire format for calendar-day parameters.
const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Error sends an error response with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, "INVALID_INPUT", message)
}

// HandleError maps an application error onto the response taxonomy.
// Domain error codes carry their own status; provider failures surface as
// a 502 with the sanitized body already embedded in the message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	var upstreamErr *connector.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.Error(c, http.StatusBadGateway, "UPSTREAM_FAILED", upstreamErr.Error())
		return
	}

	if errors.Is(err, report.ErrInvalidGrain) {
		h.BadRequest(c, "grain must be one of day, week, month")
		return
	}

	h.Error(c, http.StatusInternalServerError, "INTERNAL", "An unexpected error occurred")
}

// tenantID returns the tenant resolved by the tenant middleware.
func tenantID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.GetTenantID(c)
}

// pathProvider maps the :provider route segment to a ProviderCode.
func pathProvider(c *gin.Context) (connector.ProviderCode, bool) {
	return connector.ParseProviderCode(c.Param("provider"))
}

// parseDate parses a YYYY-MM-DD query or body value.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
