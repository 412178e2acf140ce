package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	Submissions         *prometheus.CounterVec
	RejectedSubmissions prometheus.Counter
	Completions         prometheus.Counter
	Failures            prometheus.Counter
	ProcessingTime      prometheus.Histogram
	InFlight            prometheus.Gauge
	Statuses            *prometheus.GaugeVec
	StoredProofs        prometheus.Gauge
	TestProofsGenerated prometheus.Counter
}

// NewMetrics creates metrics registered on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_relayer_submissions_total",
			Help: "Total number of accepted email submissions",
		}, []string{"command"}),
		RejectedSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mock_relayer_rejected_submissions_total",
			Help: "Total number of submissions rejected at intake",
		}),
		Completions: factory.NewCounter(prometheus.CounterOpts{
			Name: "mock_relayer_completions_total",
			Help: "Total number of submissions that produced a proof",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mock_relayer_failures_total",
			Help: "Total number of submissions that ended in the failed state",
		}),
		ProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mock_relayer_processing_duration_seconds",
			Help:    "Time from intake to a terminal status",
			Buckets: prometheus.DefBuckets,
		}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mock_relayer_in_flight_tasks",
			Help: "Number of pipeline tasks currently running",
		}),
		Statuses: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mock_relayer_statuses",
			Help: "Number of tracked submissions by status, refreshed by the reporter",
		}, []string{"status"}),
		StoredProofs: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mock_relayer_stored_proofs",
			Help: "Number of distinct email hashes in the proof store, refreshed by the reporter",
		}),
		TestProofsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mock_relayer_test_proofs_total",
			Help: "Total number of proofs seeded through the test endpoint",
		}),
	}
}
