package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors used for monitoring the directory
// backend: employee operation counts, login attempts by outcome, and
// total uploaded image bytes.
type Metrics struct {
	EmployeeOps   *prometheus.CounterVec
	LoginAttempts *prometheus.CounterVec
	UploadedBytes prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered with the
// provided Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EmployeeOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_employee_operations_total",
			Help: "Total employee record operations by type.",
		}, []string{"operation"}), // operation: created, updated, deleted, status_changed
		LoginAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "staffdir_login_attempts_total",
			Help: "Total login attempts by outcome.",
		}, []string{"outcome"}),
		UploadedBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "staffdir_uploaded_image_bytes_total",
			Help: "Total bytes of employee images written to disk.",
		}),
	}

	m.LoginAttempts.WithLabelValues("success")
	m.LoginAttempts.WithLabelValues("failure")

	return m
}
