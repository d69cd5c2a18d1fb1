package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wishwell_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wishwell_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Metrics records request counts and latency per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpReqTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
