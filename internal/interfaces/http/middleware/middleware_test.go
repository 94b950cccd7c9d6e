package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTenantEngine(secret string) *gin.Engine {
	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(JWT(secret))
	engine.Use(Tenant())
	engine.GET("/probe", func(c *gin.Context) {
		id, _ := GetTenantID(c)
		c.String(http.StatusOK, id.String())
	})
	return engine
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTenantFromHeader(t *testing.T) {
	engine := newTenantEngine("secret")
	tenant := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeaderKey, tenant.String())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenant.String(), w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestTenantFromJWTClaimWinsOverHeader(t *testing.T) {
	secret := "secret"
	engine := newTenantEngine(secret)
	jwtTenant := uuid.New()

	token := signToken(t, secret, jwt.MapClaims{
		"sub":       "user-1",
		"tenant_id": jwtTenant.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(TenantHeaderKey, uuid.New().String())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, jwtTenant.String(), w.Body.String())
}

func TestTenantMissingOrMalformed(t *testing.T) {
	engine := newTenantEngine("secret")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(TenantHeaderKey, "not-a-uuid")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJWTRejectsBadToken(t *testing.T) {
	engine := newTenantEngine("secret")

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with the wrong secret.
	token := signToken(t, "other-secret", jwt.MapClaims{
		"tenant_id": uuid.New().String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBodyLimitRejectsOversizedBody(t *testing.T) {
	engine := gin.New()
	engine.Use(BodyLimit(8))
	engine.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.ContentLength = 64
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
