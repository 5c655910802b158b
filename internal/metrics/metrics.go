// Package metrics provides Prometheus metrics for the dashboard pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	FetchTotal     *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	CacheFallbacks prometheus.Counter
	CacheWrites    *prometheus.CounterVec
	StaleResults   *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the metrics and registers them with a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "coin_dashboard"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "fetch_total",
			Help:      "Total market data fetches by operation and outcome",
		}, []string{"op", "outcome"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "fetch_duration_seconds",
			Help:      "Market data fetch latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		CacheFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "cache_fallback_total",
			Help:      "List fetch failures served from the cached snapshot",
		}),
		CacheWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "cache_writes_total",
			Help:      "Snapshot writes by outcome",
		}, []string{"outcome"}),
		StaleResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "stale_results_total",
			Help:      "Fetch results discarded because a newer request superseded them",
		}, []string{"view"}),
		gatherer: reg,
	}
}

// ObserveFetch records one gateway call.
func (m *Metrics) ObserveFetch(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(op, outcome).Inc()
	m.FetchDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) CacheFallback() {
	if m == nil {
		return
	}
	m.CacheFallbacks.Inc()
}

func (m *Metrics) CacheWrite(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.CacheWrites.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StaleResult(view string) {
	if m == nil {
		return
	}
	m.StaleResults.WithLabelValues(view).Inc()
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on addr. It blocks like http.ListenAndServe.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
