// Package metrics exposes Prometheus instrumentation for reachability checks and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mozilla-ai/urlprobe/internal/contracts"
	"github.com/mozilla-ai/urlprobe/internal/domain"
)

const namespace = "urlprobe"

// probeResultError labels probes that received no HTTP response.
const probeResultError = "error"

var _ contracts.ProbeRecorder = (*Metrics)(nil)

// Metrics owns a dedicated registry so multiple instances (e.g. in tests) never collide.
// New should be used to create instances of Metrics.
type Metrics struct {
	registry *prometheus.Registry

	checksTotal     *prometheus.CounterVec
	probesTotal     *prometheus.CounterVec
	probeDuration   *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors, including the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total reachability checks by verdict",
			},
			[]string{"verdict"},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Total outbound probes by method and result (status class or error)",
			},
			[]string{"method", "result"},
		),
		probeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "probe_duration_seconds",
				Help:      "Outbound probe duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total API responses by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checksTotal,
		m.probesTotal,
		m.probeDuration,
		m.requestsTotal,
		m.requestDuration,
	)

	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveProbe implements contracts.ProbeRecorder.
func (m *Metrics) ObserveProbe(outcome domain.ProbeOutcome) {
	method := string(outcome.Method)
	m.probesTotal.WithLabelValues(method, probeResult(outcome)).Inc()
	m.probeDuration.WithLabelValues(method).Observe(outcome.Latency.Seconds())
}

// ObserveCheck implements contracts.ProbeRecorder.
func (m *Metrics) ObserveCheck(verdict domain.Verdict) {
	m.checksTotal.WithLabelValues(string(verdict)).Inc()
}

// Middleware records every request served by the router.
// The route label uses the chi route pattern to keep cardinality low.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// probeResult maps an outcome to a low-cardinality label: "2xx", "3xx", "4xx", "5xx" or "error".
func probeResult(outcome domain.ProbeOutcome) string {
	if outcome.StatusCode == nil {
		return probeResultError
	}
	return strconv.Itoa(*outcome.StatusCode/100) + "xx"
}
