package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dstanisic/fitlog/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetricsMiddleware(t *testing.T) {
	m := metrics.NewTestManager()

	router := mux.NewRouter()
	router.HandleFunc("/workout/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods("GET")
	router.Use(RequestMetrics(m))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/workout/42", nil)
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)

	counter, err := m.CounterRequests.GetMetricWith(prometheus.Labels{
		"method": "GET",
		"status": "404",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))

	// duration observed under the route template, not the concrete path
	observer, err := m.HistogramRequestDuration.MetricVec.GetMetricWith(prometheus.Labels{
		"route":       "/workout/{id}",
		"method":      "GET",
		"status_code": "404",
	})
	require.NoError(t, err)
	assert.NotNil(t, observer)
}

func TestRequestMetricsMiddleware_DefaultStatusOK(t *testing.T) {
	m := metrics.NewTestManager()

	handler := RequestMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	handler.ServeHTTP(rr, req)

	counter, err := m.CounterRequests.GetMetricWith(prometheus.Labels{
		"method": "GET",
		"status": "200",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}
