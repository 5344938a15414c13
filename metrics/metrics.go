// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LLMCalls counts completion requests by provider and outcome.
	LLMCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covmap",
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "LLM completion calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	// LLMCallDuration observes completion round-trip time.
	LLMCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "covmap",
		Subsystem: "llm",
		Name:      "call_duration_seconds",
		Help:      "LLM completion round-trip duration.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"provider"})

	// RepairOutcomes counts JSON repair results by the stage that succeeded
	// ("direct", "fenced", "textual", "scan") or "failed".
	RepairOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covmap",
		Subsystem: "llm",
		Name:      "json_repairs_total",
		Help:      "Structured reply repairs by succeeding stage.",
	}, []string{"stage"})

	// ExtractionFallbacks counts chunks that fell back from structured to
	// pattern-based extraction.
	ExtractionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "covmap",
		Subsystem: "extract",
		Name:      "fallbacks_total",
		Help:      "Chunks degraded to pattern-based extraction.",
	})

	// QuestionsExtracted counts emitted questions by type.
	QuestionsExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covmap",
		Subsystem: "extract",
		Name:      "questions_total",
		Help:      "Questions extracted by classified type.",
	}, []string{"type"})

	// MappingFailures counts per-question mapping failures by policy action.
	MappingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "covmap",
		Subsystem: "mapping",
		Name:      "failures_total",
		Help:      "Mapping failures by applied policy action.",
	}, []string{"action"})
)
