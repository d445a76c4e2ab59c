package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suteetoe/marketplace/pkg/config"
)

const prefix = "marketplace"

var (
	// HTTP request metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// StatusCategoryCounter counts responses by 2xx/4xx/5xx
	StatusCategoryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"service", "category"},
	)

	// Database operation metrics
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	NeedOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_need_operations_total",
			Help: "Total number of need operations",
		},
		[]string{"operation"},
	)

	ServiceOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_service_operations_total",
			Help: "Total number of service offer operations",
		},
		[]string{"operation"},
	)

	// Authentication metrics
	AuthErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"},
	)

	UploadBytesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_upload_bytes_total",
			Help: "Total number of bytes accepted by the upload endpoint",
		},
	)
)

var (
	registerOnce sync.Once
	serviceName  = "marketplace"
)

// InitMetrics registers the collectors with the default registry. Safe to call more than once.
func InitMetrics(cfg *config.Config) {
	if cfg != nil && cfg.ServiceName != "" {
		serviceName = cfg.ServiceName
	}
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			StatusCategoryCounter,
			DbOperationDuration,
			NeedOperationsCounter,
			ServiceOperationsCounter,
			AuthErrorsCounter,
			UploadBytesCounter,
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordNeedOperation increments the counter for need operations
func RecordNeedOperation(operation string) {
	NeedOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordServiceOperation increments the counter for service operations
func RecordServiceOperation(operation string) {
	ServiceOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(kind string) {
	AuthErrorsCounter.WithLabelValues(kind).Inc()
}

// RecordUpload adds accepted upload bytes
func RecordUpload(size int64) {
	UploadBytesCounter.Add(float64(size))
}

func statusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500 && status < 600:
		return "5xx"
	}
	return ""
}

// HTTPMiddleware creates an Echo middleware function that records HTTP request metrics
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			method := c.Request().Method
			path := c.Path()
			statusStr := strconv.Itoa(status)

			HttpRequestsTotal.WithLabelValues(serviceName, method, path, statusStr).Inc()
			if category := statusCategory(status); category != "" {
				StatusCategoryCounter.WithLabelValues(serviceName, category).Inc()
			}
			HttpRequestDuration.WithLabelValues(serviceName, method, path, statusStr).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
