// Package metrics holds the Prometheus collectors of obligo.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "How many HTTP requests processed, partitioned by status code and HTTP method.",
		},
		[]string{"code", "method", "url"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "request_duration_seconds",
			Help: "The HTTP request latencies in seconds.",
		},
		[]string{"code", "method", "url"},
	)

	OverdueTransitions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "obligo_overdue_transitions_total",
			Help: "Scheduled transactions moved from PENDING to OVERDUE.",
		},
	)

	MatchesConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "obligo_matches_confirmed_total",
			Help: "Scheduled transactions paired with a transaction.",
		},
	)

	MatchesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obligo_matches_rejected_total",
			Help: "Pairing confirmations refused because the pair was no longer eligible, partitioned by stage.",
		},
		[]string{"stage"},
	)

	MatchCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "obligo_match_candidates",
			Help:    "Number of candidates returned per matching search, partitioned by direction.",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
		[]string{"direction"},
	)

	InsufficientFundsWarnings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "obligo_insufficient_funds_warnings",
			Help: "Accounts that cannot cover their upcoming obligations at the last projection.",
		},
	)

	ReconciliationDrift = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obligo_reconciliation_drift_total",
			Help: "Reconciliations that found a drift, partitioned by kind.",
		},
		[]string{"kind"},
	)

	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obligo_job_runs_total",
			Help: "Runs of scheduled jobs, partitioned by job and result.",
		},
		[]string{"job", "result"},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "obligo_job_duration_seconds",
			Help: "Duration of scheduled job runs in seconds.",
		},
		[]string{"job"},
	)
)

var collectors = []prometheus.Collector{
	RequestCount,
	RequestDuration,
	OverdueTransitions,
	MatchesConfirmed,
	MatchesRejected,
	MatchCandidates,
	InsufficientFundsWarnings,
	ReconciliationDrift,
	JobRuns,
	JobDuration,
}

// Register registers all collectors with the default registry.
func Register() error {
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus: %w", c, err)
		}
	}

	return nil
}

// Unregister unregisters all collectors. It is needed to register them
// again, e.g. when a new router is set up in tests.
func Unregister() bool {
	ok := true
	for _, c := range collectors {
		if !prometheus.Unregister(c) {
			ok = false
		}
	}

	return ok
}
