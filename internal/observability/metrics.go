package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total number of HTTP requests processed by the relay service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	relayOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_operations_total",
			Help: "Total number of relay operations by kind and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	relayDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_deliveries_total",
			Help: "Total number of per-recipient deliveries by transmission mode and result.",
		},
		[]string{"mode", "result"},
	)
	fanoutDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_fanout_duration_seconds",
			Help:    "Time spent delivering one message to all of its recipients.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)
	recoveredPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_recovered_failures_total",
			Help: "Total number of errors and panics contained by the failure-safe wrapper.",
		},
		[]string{"operation"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		relayOperationsTotal,
		relayDeliveriesTotal,
		fanoutDuration,
		recoveredPanicsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncOperation(operation, outcome string) {
	relayOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func IncDelivery(mode string, delivered bool) {
	result := "failed"
	if delivered {
		result = "delivered"
	}
	relayDeliveriesTotal.WithLabelValues(mode, result).Inc()
}

func ObserveFanout(mode string, elapsed time.Duration) {
	fanoutDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func IncRecoveredFailure(operation string) {
	recoveredPanicsTotal.WithLabelValues(operation).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
