package bv

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace    = "bv"
	evaluatorSubsystem  = "evaluator"
	experimentSubsystem = "experiments"
)

var (
	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: evaluatorSubsystem,
			Name:      "runs_total",
			Help:      "Total number of circuit evaluations",
		},
		[]string{"backend", "style", "status"},
	)

	shotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: evaluatorSubsystem,
			Name:      "shots_total",
			Help:      "Total number of shots executed",
		},
		[]string{"backend"},
	)

	runAccuracy = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: evaluatorSubsystem,
			Name:      "accuracy_ratio",
			Help:      "Fraction of shots that recovered the secret",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"style"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: evaluatorSubsystem,
			Name:      "run_duration_seconds",
			Help:      "Backend execution time per evaluation",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"backend"},
	)

	experimentsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: experimentSubsystem,
			Name:      "active",
			Help:      "Number of experiments held in memory",
		},
	)

	experimentsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: experimentSubsystem,
			Name:      "expired_total",
			Help:      "Total number of experiments removed by retention cleanup",
		},
	)
)
