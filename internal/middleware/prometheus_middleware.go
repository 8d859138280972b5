package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware registers basic HTTP metrics for Gin.
// The /metrics route is added separately via RegisterMetricsEndpoint.
//
// Usage:
//
//	mw := middleware.NewPrometheusMiddleware("casino_api")
//	r.Use(mw.Handler())
//	mw.RegisterMetricsEndpoint(r)
//
// Metrics:
// * http_request_duration_seconds{method,path,status} histogram
// * http_requests_inflight gauge
// * http_request_errors_total{method,path,status} counter (4xx/5xx)
type PrometheusMiddleware struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
}

// NewPrometheusMiddleware creates the middleware and registers its metrics
// in the default registry. Re-registering the same service reuses the
// already-registered collectors.
func NewPrometheusMiddleware(service string) *PrometheusMiddleware {
	reqDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: service,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "path", "status"})
	reqInflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: service,
		Name:      "http_requests_inflight",
		Help:      "Number of HTTP requests currently being served.",
	})
	reqErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: service,
		Name:      "http_request_errors_total",
		Help:      "Total number of requests that ended in an error (4xx/5xx).",
	}, []string{"method", "path", "status"})

	return &PrometheusMiddleware{
		reqDuration: registerOrReuse(reqDuration).(*prometheus.HistogramVec),
		reqInflight: registerOrReuse(reqInflight).(prometheus.Gauge),
		reqErrors:   registerOrReuse(reqErrors).(*prometheus.CounterVec),
	}
}

func registerOrReuse(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// Handler returns the gin.HandlerFunc to add via router.Use().
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		pm.reqInflight.Inc()
		c.Next()
		pm.reqInflight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // unmatched routes
		}
		method := c.Request.Method

		pm.reqDuration.WithLabelValues(method, path, status).Observe(duration)

		if c.Writer.Status() >= 400 {
			pm.reqErrors.WithLabelValues(method, path, status).Inc()
		}
	}
}

// RegisterMetricsEndpoint adds GET /metrics to the router.
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
