package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the engagement ledger.
type Metrics struct {
	VotesCast      prometheus.Counter
	DuplicateVotes prometheus.Counter
	PointsCredited prometheus.Counter
}

// New creates and registers all engagement metrics.
func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicpulse_votes_cast_total",
			Help: "Total number of votes successfully recorded",
		}),
		DuplicateVotes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicpulse_duplicate_votes_total",
			Help: "Total number of vote attempts rejected as duplicates",
		}),
		PointsCredited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civicpulse_points_credited_total",
			Help: "Total contribution points credited across all users",
		}),
	}
}
