// SPDX-License-Identifier: MPL-2.0

// Package metrics exports run statistics in the Prometheus format.
//
// A Metrics value owns its registry, so several may coexist (one per test).
// Hooks plugs it into the engine; Router serves it over HTTP.
package metrics

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgecad/forge/internal/engine"
)

const (
	namespace = "forge"

	// OutcomeSuccess labels runs that produced geometry. Failed runs are labeled
	// with their failure kind.
	OutcomeSuccess = "success"
)

// Metrics holds the collectors fed by engine lifecycle hooks.
type Metrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	geometries *prometheus.CounterVec
	repairs    prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Script runs by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a script run, including introspection.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Script runs currently executing.",
		}),
		geometries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "geometries_total",
				Help:      "Normalized geometry descriptors produced, by kind.",
			},
			[]string{"kind"},
		),
		repairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_repairs_total",
			Help:      "Buffer problems fixed during normalization.",
		}),
	}
	m.registry.MustRegister(
		m.runs, m.duration, m.inFlight, m.geometries, m.repairs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns engine hooks that record every run.
func (m *Metrics) Hooks() engine.LifecycleHooks {
	return engine.LifecycleHooks{
		OnRunStart: func(_ context.Context, _ *engine.RunEvent) {
			m.inFlight.Inc()
		},
		OnRunFinish: func(_ context.Context, ev *engine.RunEvent) {
			m.inFlight.Dec()
			m.Observe(ev)
		},
	}
}

// Observe records a finished run.
func (m *Metrics) Observe(ev *engine.RunEvent) {
	outcome := Outcome(ev.Result)
	m.runs.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(ev.Duration.Seconds())

	if !ev.Result.OK() {
		return
	}
	for _, g := range ev.Result.Success.Geometries {
		m.geometries.WithLabelValues(string(g.Kind)).Inc()
	}
	m.repairs.Add(float64(ev.Result.Success.Repairs))
}

// Outcome is the label value for a result.
func Outcome(res *engine.Result) string {
	switch {
	case res.OK():
		return OutcomeSuccess
	case res != nil && res.Failure != nil:
		return string(res.Failure.Kind)
	default:
		return "unknown"
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Router mounts /metrics and a /healthz liveness probe. Callers may add routes.
func (m *Metrics) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}
