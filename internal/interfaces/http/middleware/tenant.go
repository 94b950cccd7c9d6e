package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growthdeck/backend/internal/interfaces/http/dto"
)

const (
	// TenantIDKey is the gin context key holding the resolved tenant id.
	TenantIDKey = "tenant_id"
	// TenantHeaderKey is the fallback header when no JWT claim is present.
	TenantHeaderKey = "X-Tenant-ID"
)

// Tenant resolves the request's tenant, JWT claim first, then the
// X-Tenant-ID header. Every data route requires a tenant; requests
// without one are rejected before any handler runs.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := GetJWTTenantID(c)
		if raw == "" {
			raw = c.GetHeader(TenantHeaderKey)
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID("INVALID_INPUT", "Tenant not identified", GetRequestID(c)))
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID("INVALID_INPUT", "Tenant id must be a UUID", GetRequestID(c)))
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant id stored by Tenant. The second return
// is false on routes that skipped the middleware.
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
