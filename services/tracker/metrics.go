package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"caseclosure/pkg/behavior"
)

// Prometheus metrics
var (
	eventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "events", Name: "ingested_total", Help: "Total number of interaction events ingested by type."},
		[]string{"event_type"},
	)
	verdictsTriggered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tracker", Subsystem: "rules", Name: "triggered_total", Help: "Total number of triggered rule verdicts by evaluator."},
		[]string{"rule"},
	)
	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "tracker", Subsystem: "rules", Name: "evaluation_seconds", Help: "Time spent running all evaluators over one event.", Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8)},
	)
)

func init() {
	_ = prometheus.Register(eventsIngested)
	_ = prometheus.Register(verdictsTriggered)
	_ = prometheus.Register(evaluationDuration)
}

func recordEvaluation(eventType string, elapsed time.Duration) {
	eventsIngested.WithLabelValues(eventType).Inc()
	evaluationDuration.Observe(elapsed.Seconds())
}

func recordVerdicts(mouse, typing behavior.Verdict) {
	if mouse.Triggered {
		verdictsTriggered.WithLabelValues("mouse_profiler").Inc()
	}
	if typing.Triggered {
		verdictsTriggered.WithLabelValues("keystroke_analyzer").Inc()
	}
}
