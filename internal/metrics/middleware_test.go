package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, reg := NewTestManagerAndRegistry()

	router := gin.New()
	router.Use(RequestMetrics(m))
	router.GET("/plans/:planId", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "204"})))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRequests.With(prometheus.Labels{"method": "GET", "status": "404"})))

	count, err := testutil.GatherAndCount(reg, "coaching_test_server_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveOperation(t *testing.T) {
	m := NewTestManager()

	m.ObserveOperation("assign_day", OutcomeOK)
	m.ObserveOperation("assign_day", OutcomeRejected)
	m.ObserveOperation("assign_day", OutcomeRejected)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterOperations.WithLabelValues("assign_day", OutcomeOK)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterOperations.WithLabelValues("assign_day", OutcomeRejected)))
}
