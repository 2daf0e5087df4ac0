package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the report lifecycle.
type Metrics struct {
	Submitted     prometheus.Counter
	StatusChanges *prometheus.CounterVec
	Categorized   *prometheus.CounterVec
}

// New creates and registers all report metrics.
func New() *Metrics {
	return &Metrics{
		Submitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicpulse_reports_submitted_total",
			Help: "Total number of reports accepted",
		}),
		StatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civicpulse_report_status_changes_total",
			Help: "Total number of report status transitions",
		}, []string{"to"}),
		Categorized: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civicpulse_reports_categorized_total",
			Help: "Total number of reports by assigned category",
		}, []string{"category"}),
	}
}
