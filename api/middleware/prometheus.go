package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	duelOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duel_operations_total",
			Help: "Total number of duel and friendship operations by result",
		},
		[]string{"operation", "result", "service"},
	)

	duelOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duel_operation_duration_seconds",
			Help:    "Duration of duel and friendship operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "service"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordDuelOperation учитывает операцию оркестратора: addfriend, challenge, success...
// result - ok, rejected, failed
func RecordDuelOperation(operation, result, serviceName string, duration time.Duration) {
	duelOperationsTotal.WithLabelValues(operation, result, serviceName).Inc()
	duelOperationDuration.WithLabelValues(operation, serviceName).Observe(duration.Seconds())
}
