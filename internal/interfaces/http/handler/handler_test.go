package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growthdeck/backend/internal/application/commerce"
	appingest "github.com/growthdeck/backend/internal/application/ingest"
	appreport "github.com/growthdeck/backend/internal/application/report"
	appsync "github.com/growthdeck/backend/internal/application/sync"
	"github.com/growthdeck/backend/internal/domain/connector"
	"github.com/growthdeck/backend/internal/domain/report"
	"github.com/growthdeck/backend/internal/domain/shared"
	"github.com/growthdeck/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubImporter struct {
	result *appingest.Result
	err    error

	gotTenant   uuid.UUID
	gotProvider connector.ProviderCode
	gotBody     string
	gotSKU      string
}

func (s *stubImporter) Import(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, r io.Reader) (*appingest.Result, error) {
	s.gotTenant = tenantID
	s.gotProvider = provider
	body, _ := io.ReadAll(r)
	s.gotBody = string(body)
	return s.result, s.err
}

func (s *stubImporter) DeactivateProduct(ctx context.Context, tenantID uuid.UUID, sku string) error {
	s.gotTenant = tenantID
	s.gotSKU = sku
	return s.err
}

type stubReporter struct {
	report    *appreport.Report
	lifecycle *appreport.LifecycleReport
	err       error
	gotGrain  report.Grain
}

func (s *stubReporter) RunReport(ctx context.Context, tenantID uuid.UUID, from, to time.Time, grain report.Grain) (*appreport.Report, error) {
	s.gotGrain = grain
	return s.report, s.err
}

func (s *stubReporter) RunLifecycleReport(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*appreport.LifecycleReport, error) {
	return s.lifecycle, s.err
}

type stubRunner struct {
	result  *appsync.BackfillResult
	err     error
	gotFrom time.Time
	gotTo   time.Time
}

func (s *stubRunner) RunBackfill(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, from, to time.Time) (*appsync.BackfillResult, error) {
	s.gotFrom, s.gotTo = from, to
	return s.result, s.err
}

func (s *stubRunner) RunSweep(ctx context.Context, provider connector.ProviderCode, day time.Time) (*appsync.BackfillResult, error) {
	return s.result, s.err
}

type stubReceiver struct {
	result   *commerce.WebhookResult
	err      error
	gotTopic string
}

func (s *stubReceiver) HandleDelivery(ctx context.Context, tenantID uuid.UUID, provider connector.ProviderCode, topic, signature string, body []byte) (*commerce.WebhookResult, error) {
	s.gotTopic = topic
	return s.result, s.err
}

// newTestEngine mirrors the production route layout: tenant middleware on
// the api group, webhooks at the root.
func newTestEngine(api []interface{ RegisterRoutes(*gin.RouterGroup) }, webhooks *WebhookHandler) *gin.Engine {
	engine := gin.New()
	if webhooks != nil {
		webhooks.RegisterRoutes(&engine.RouterGroup)
	}
	group := engine.Group("/api/v1")
	group.Use(middleware.Tenant())
	for _, h := range api {
		h.RegisterRoutes(group)
	}
	return engine
}

func doRequest(engine *gin.Engine, method, path, tenant, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if tenant != "" {
		req.Header.Set(middleware.TenantHeaderKey, tenant)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestUploadRoutesBodyToImporter(t *testing.T) {
	importer := &stubImporter{result: &appingest.Result{Source: "import:metaads", RowsTotal: 2, RowsParsed: 2}}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewImportHandler(importer)}, nil)
	tenant := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/imports/metaads", tenant.String(), "2025-01-01,c,n,a,n,ad,n,1,1,1,1,1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, tenant, importer.gotTenant)
	assert.Equal(t, connector.ProviderMetaAds, importer.gotProvider)
	assert.Contains(t, importer.gotBody, "2025-01-01")

	var resp struct {
		Success bool             `json:"success"`
		Data    appingest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Data.RowsParsed)
}

func TestUploadRejectsUnknownProviderAndMissingTenant(t *testing.T) {
	importer := &stubImporter{result: &appingest.Result{}}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewImportHandler(importer)}, nil)

	w := doRequest(engine, http.MethodPost, "/api/v1/imports/nosuch", uuid.New().String(), "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/imports/metaads", "", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(engine, http.MethodPost, "/api/v1/imports/metaads", "not-a-uuid", "x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeactivateProductRoutesSKU(t *testing.T) {
	importer := &stubImporter{}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewImportHandler(importer)}, nil)
	tenant := uuid.New()

	w := doRequest(engine, http.MethodPost, "/api/v1/catalog/SKU-9/deactivate", tenant.String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tenant, importer.gotTenant)
	assert.Equal(t, "SKU-9", importer.gotSKU)

	importer.err = shared.ErrNotFound
	w = doRequest(engine, http.MethodPost, "/api/v1/catalog/SKU-9/deactivate", tenant.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReportParsesQuery(t *testing.T) {
	reporter := &stubReporter{report: &appreport.Report{Grain: report.GrainWeek}}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewReportHandler(reporter)}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/reports?from=2025-01-01&to=2025-01-31&grain=week", uuid.New().String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, report.GrainWeek, reporter.gotGrain)

	w = doRequest(engine, http.MethodGet, "/api/v1/reports?from=bad&to=2025-01-31", uuid.New().String(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReportInvalidGrainIs400(t *testing.T) {
	reporter := &stubReporter{err: report.ErrInvalidGrain}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewReportHandler(reporter)}, nil)

	w := doRequest(engine, http.MethodGet, "/api/v1/reports?from=2025-01-01&to=2025-01-31&grain=hour", uuid.New().String(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBackfillParsesRangeAndMapsAuthFailure(t *testing.T) {
	runner := &stubRunner{result: &appsync.BackfillResult{Status: "success"}}
	engine := newTestEngine([]interface{ RegisterRoutes(*gin.RouterGroup) }{NewSyncHandler(runner, nil)}, nil)
	tenant := uuid.New().String()

	w := doRequest(engine, http.MethodPost, "/api/v1/sync/shopfront/backfill", tenant,
		`{"from":"2025-01-01","to":"2025-01-03"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2025-01-01", runner.gotFrom.Format("2006-01-02"))

	w = doRequest(engine, http.MethodPost, "/api/v1/sync/shopfront/backfill", tenant, `{"from":"01/01/2025","to":"2025-01-03"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	runner.err = shared.ErrAuthFailed
	runner.result = nil
	w = doRequest(engine, http.MethodPost, "/api/v1/sync/shopfront/backfill", tenant,
		`{"from":"2025-01-01","to":"2025-01-03"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_FAILED")
}

func TestWebhookSignatureFailureIs401(t *testing.T) {
	receiver := &stubReceiver{err: shared.ErrAuthFailed}
	engine := newTestEngine(nil, NewWebhookHandler(receiver))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopfront/"+uuid.New().String(), strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Topic", "orders/create")
	req.Header.Set("X-Webhook-Signature", "bogus")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookSuccessPassesTopic(t *testing.T) {
	receiver := &stubReceiver{result: &commerce.WebhookResult{Topic: "orders/create", RowsWritten: 1}}
	engine := newTestEngine(nil, NewWebhookHandler(receiver))

	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopfront/"+uuid.New().String(), strings.NewReader(`{"id":1}`))
	req.Header.Set("X-Webhook-Topic", "orders/create")
	req.Header.Set("X-Webhook-Signature", "sig")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "orders/create", receiver.gotTopic)
}
