// Package observability provides Prometheus metrics for the dockhand client:
// stream session lifecycle, delivered events and daemon round trips.
package observability

import "github.com/prometheus/client_golang/prometheus"

// DaemonBuckets defines histogram buckets for daemon round trips, ranging
// from 5ms to 30s. Streaming requests are measured until headers arrive.
var DaemonBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Session termination outcomes used as the "outcome" label.
const (
	OutcomeCompleted  = "completed"
	OutcomeClosed     = "closed"
	OutcomeOwnerLost  = "owner_lost"
	OutcomeOpenFailed = "open_failed"
	OutcomeTerminated = "terminated"
	OutcomeFailed     = "failed"
	OutcomeDefect     = "defect"
	OutcomeCrashed    = "crashed"
)

var (
	// SessionsActive tracks the number of live stream sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dockhand_sessions_active",
			Help: "Active event stream sessions",
		},
	)

	// SessionsTotal counts terminated stream sessions by outcome.
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockhand_sessions_total",
			Help: "Terminated event stream sessions",
		},
		[]string{"outcome"},
	)

	// EventsDelivered counts events delivered to session owners by resource type.
	EventsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockhand_events_delivered_total",
			Help: "Events delivered to stream owners",
		},
		[]string{"resource"},
	)

	// OwnershipTransfers counts successful ownership transfers.
	OwnershipTransfers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dockhand_ownership_transfers_total",
			Help: "Stream ownership transfers",
		},
	)

	// DaemonRequestsTotal counts requests sent to the daemon by method and status class.
	DaemonRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockhand_daemon_requests_total",
			Help: "Daemon requests",
		},
		[]string{"method", "status"},
	)

	// DaemonRequestDuration records the time until response headers arrive.
	DaemonRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockhand_daemon_request_duration_seconds",
			Help:    "Daemon request latency until headers",
			Buckets: DaemonBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		SessionsActive,
		SessionsTotal,
		EventsDelivered,
		OwnershipTransfers,
		DaemonRequestsTotal,
		DaemonRequestDuration,
	)
}
