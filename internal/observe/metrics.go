// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/corpusgen/pkg/types"
)

const namespace = "corpusgen"

// Metrics exports run progress as Prometheus metrics on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	Units       *prometheus.CounterVec
	Attempts    *prometheus.CounterVec
	UnitWords   prometheus.Histogram
	Words       prometheus.Gauge
	Requests    prometheus.Gauge
	Cost        prometheus.Gauge
	Checkpoints prometheus.Counter
	Outcome     *prometheus.GaugeVec
}

// NewMetrics registers the generator metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Units: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "unit",
			Name:      "total",
			Help:      "Prompts processed, by result and prompt strategy",
		}, []string{"result", "strategy"}),
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "unit",
			Name:      "failed_attempts_total",
			Help:      "HTTP attempts spent on prompts that produced no text, by outcome",
		}, []string{"outcome"}),
		UnitWords: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "unit",
			Name:      "word_count",
			Help:      "Words per generated text",
			Buckets:   []float64{25, 50, 100, 150, 200, 300, 400, 600},
		}),
		Words: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "words",
			Help:      "Total words generated, including resumed progress",
		}),
		Requests: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "corpus",
			Name:      "requests",
			Help:      "Total successful requests, including resumed progress",
		}),
		Cost: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "budget",
			Name:      "estimated_cost_dollars",
			Help:      "Estimated spend so far",
		}),
		Checkpoints: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "checkpoints_total",
			Help:      "Checkpoints written",
		}),
		Outcome: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "run",
			Name:      "outcome",
			Help:      "Set to 1 for the outcome of a finished run",
		}, []string{"outcome"}),
	}
}

// Handler serves the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) UnitGenerated(meta types.StoryMetadata, st *types.State) {
	m.Units.WithLabelValues("generated", meta.GenerationStrategy).Inc()
	m.UnitWords.Observe(float64(meta.WordCount))
	m.setTotals(st)
}

func (m *Metrics) UnitFailed(f types.UnitFailure) {
	m.Units.WithLabelValues("failed", f.Strategy).Inc()
	m.Attempts.WithLabelValues(f.Outcome).Add(float64(f.Attempts))
}

func (m *Metrics) CheckpointSaved(st *types.State) {
	m.Checkpoints.Inc()
	m.setTotals(st)
}

func (m *Metrics) RunFinished(s types.RunSummary) {
	m.Outcome.WithLabelValues(string(s.Outcome)).Set(1)
	m.Words.Set(float64(s.Words))
	m.Requests.Set(float64(s.Requests))
	m.Cost.Set(s.Cost)
}

func (m *Metrics) setTotals(st *types.State) {
	m.Words.Set(float64(st.TotalWordsGenerated))
	m.Requests.Set(float64(st.TotalRequests))
	m.Cost.Set(st.EstimatedCost)
}
