package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/growthdeck/backend/internal/interfaces/http/dto"
)

const (
	jwtTenantIDKey = "jwt_tenant_id"
	jwtSubjectKey  = "jwt_subject"
)

// JWT parses an optional Bearer token and exposes its tenant claim. A
// request without an Authorization header passes through untouched so the
// tenant middleware can fall back to the X-Tenant-ID header; a present but
// invalid token is rejected.
func JWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if tenantID, ok := claims["tenant_id"].(string); ok {
			c.Set(jwtTenantIDKey, tenantID)
		}
		if sub, ok := claims["sub"].(string); ok {
			c.Set(jwtSubjectKey, sub)
		}
		c.Next()
	}
}

// GetJWTTenantID returns the tenant claim extracted by JWT, or "".
func GetJWTTenantID(c *gin.Context) string {
	return c.GetString(jwtTenantIDKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID("UNAUTHORIZED", message, GetRequestID(c)))
}
