package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics records request counts and durations. Routes are labelled by
// their registered pattern so path parameters do not explode cardinality.
func RequestMetrics(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HistogramRequestDuration.With(prometheus.Labels{
			"route":       route,
			"method":      c.Request.Method,
			"status_code": status,
		}).Observe(time.Since(begin).Seconds())
		m.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"status": status,
		}).Inc()
	}
}
