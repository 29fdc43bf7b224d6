package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "madrasad_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counter
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "madrasad_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Authorization denial counter by reason
	AuthzDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madrasad_authz_denials_total",
			Help: "Total number of authorization denials by reason",
		},
		[]string{"reason"},
	)

	// Authentication error counter
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madrasad_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", "user_not_found", ...
	)

	// Jamia operation counter
	JamiaOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madrasad_jamia_operations_total",
			Help: "Total number of jamia administration operations",
		},
		[]string{"operation"}, // "create", "update", "toggle_module", "delete"
	)

	// Invoices created by bulk generation
	InvoicesGeneratedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "madrasad_invoices_generated_total",
			Help: "Total number of invoices created by bulk generation",
		},
	)

	// Attendance records written
	AttendanceMarkedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "madrasad_attendance_marked_total",
			Help: "Total number of attendance records written",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "madrasad_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// HTTP request duration
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "madrasad_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "madrasad_db_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		AuthzDenialCounter,
		AuthErrorCounter,
		JamiaOperationCounter,
		InvoicesGeneratedCounter,
		AttendanceMarkedCounter,
		HTTPRequestCounter,
		HTTPRequestDuration,
		DBOperationDuration,
	)
}

// RecordAuthError increments the auth error counter for the given type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordDenial increments the denial counter for the given reason
func RecordDenial(reason string) {
	AuthzDenialCounter.WithLabelValues(reason).Inc()
}

// RecordJamiaOperation increments the jamia operation counter
func RecordJamiaOperation(operation string) {
	JamiaOperationCounter.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(endpoint, method string, status int, duration time.Duration) {
	HTTPRequestCounter.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// TrackDBOperation returns a function that records the elapsed time of a
// database operation. Use with defer:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
