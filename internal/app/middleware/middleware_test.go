package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/farmflow/backend/internal/app/observability/metrics"
)

// The instruments bind to the meter provider active when InitAppMetrics first
// runs, so the reader is installed once for the whole package.
var testReader = func() *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	metrics.InitAppMetrics()
	return reader
}()

func collectMetrics(t *testing.T) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, testReader.Collect(context.Background(), &rm))
	return rm
}

// findCounterPoint returns the http_requests_total data point whose
// http.route attribute matches, or nil.
func findCounterPoint(rm metricdata.ResourceMetrics, route string) *metricdata.DataPoint[int64] {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for i := range sum.DataPoints {
				if v, ok := sum.DataPoints[i].Attributes.Value(attribute.Key("http.route")); ok && v.AsString() == route {
					return &sum.DataPoints[i]
				}
			}
		}
	}
	return nil
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	return r
}

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	r := newTestEngine()
	r.GET("/api/crops/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/crops/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	rm := collectMetrics(t)

	dp := findCounterPoint(rm, "/api/crops/:id")
	require.NotNil(t, dp, "no counter data point for the route template")
	assert.Equal(t, int64(1), dp.Value)
	status, ok := dp.Attributes.Value(attribute.Key("http.status_code"))
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), status.AsInt64())
	method, ok := dp.Attributes.Value(attribute.Key("http.method"))
	require.True(t, ok)
	assert.Equal(t, http.MethodGet, method.AsString())

	var timed bool
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_request_duration_seconds" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			assert.NotEmpty(t, hist.DataPoints)
			timed = true
		}
	}
	assert.True(t, timed, "duration histogram not collected")
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	r := newTestEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	dp := findCounterPoint(collectMetrics(t), "unmatched")
	require.NotNil(t, dp, "unmatched requests should still be counted")
	status, ok := dp.Attributes.Value(attribute.Key("http.status_code"))
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
}
