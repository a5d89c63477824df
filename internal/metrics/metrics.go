// Package metrics expone los contadores del pipeline de calificacion en el registro
// por defecto de Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK               = "ok"
	OutcomeInvalid          = "invalid"
	OutcomeRateLimited      = "rate_limited"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeError            = "error"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_evaluations_total",
			Help: "Evaluator requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospect_generation_duration_seconds",
			Help:    "Time spent in the qualifier backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// LeadScores separa por modelo: evaluator (0-100) y rapid (0-75) no comparten escala.
	LeadScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prospect_lead_score",
			Help:    "Distribution of computed lead scores",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
		[]string{"model"},
	)

	ScoreMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prospect_reported_score_mismatch_total",
			Help: "Generated scores that disagreed with the local model",
		},
		[]string{"backend"},
	)
)
