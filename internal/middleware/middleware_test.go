package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/consignet/consignment_backend/internal/middleware"
	"github.com/consignet/consignment_backend/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.Use(mw...)
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOperatorIdentityAndRequireOperator(t *testing.T) {
	r := newRouter(middleware.OperatorIdentity())
	r.POST("/write", middleware.RequireOperator(), func(c *gin.Context) {
		id, _ := middleware.GetOperatorIDFromContext(c)
		c.String(http.StatusOK, id)
	})

	w := serve(r, http.MethodPost, "/write", map[string]string{middleware.OperatorHeader: " ana "})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", w.Body.String())

	w = serve(r, http.MethodPost, "/write", map[string]string{middleware.OperatorHeader: "   "})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/write", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStructuredLoggingSetsRequestID(t *testing.T) {
	r := newRouter()
	r.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, middleware.GetLoggerFromCtx(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	w := serve(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": "req-42"})
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/ping", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestMetricsLabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(middleware.RequestMetrics(metrics.NewRecorder(reg)))
	r.GET("/settlements/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/settlements/s-1", nil)
	serve(r, http.MethodGet, "/settlements/s-2", nil)
	serve(r, http.MethodGet, "/health", nil)
	serve(r, http.MethodGet, "/nowhere", nil)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	counts := map[string]uint64{}
	for _, mf := range mfs {
		if mf.GetName() != "http_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					counts[l.GetValue()] += m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	assert.Equal(t, map[string]uint64{"/settlements/:id": 2, "unmatched": 1}, counts)
}

func TestRateLimitRejectsOverQuota(t *testing.T) {
	lim, err := middleware.NewLimiter("2-M", nil)
	require.NoError(t, err)
	r := newRouter(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodGet, "/ping", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}
	w := serve(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestNewLimiterRejectsBadRate(t *testing.T) {
	_, err := middleware.NewLimiter("lots", nil)
	assert.Error(t, err)
}
