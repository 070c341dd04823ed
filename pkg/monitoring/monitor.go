package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	TestSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "test_submissions_total",
			Help: "Scored test submissions by test kind and outcome",
		},
		[]string{"kind", "passed"},
	)

	CascadeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_failures_total",
			Help: "Failed best-effort side effects after a passed test",
		},
		[]string{"kind"},
	)

	CertificatesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "certificates_issued_total",
			Help: "Certificates issued by scope",
		},
		[]string{"scope"},
	)

	ReconciledResults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciled_results_total",
			Help: "Passed results re-applied by the reconciler",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(TestSubmissions)
	prometheus.MustRegister(CascadeFailures)
	prometheus.MustRegister(CertificatesIssued)
	prometheus.MustRegister(ReconciledResults)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
