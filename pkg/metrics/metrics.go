// Package metrics exports Prometheus collectors for solves, cache traffic
// and the HTTP API.
//
// A [Registry] implements the hook interfaces of package observability, so
// wiring it up is a matter of registering it at startup:
//
//	m := metrics.NewRegistry()
//	observability.SetSolveHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetHTTPHooks(m)
//	http.Handle("/metrics", m.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/rsolver/pkg/observability"
)

const namespace = "rsolver"

// Registry holds every rsolver collector on a private Prometheus registry.
type Registry struct {
	// Solve metrics
	LoadsTotal      *prometheus.CounterVec
	SolvesTotal     *prometheus.CounterVec
	SolveDuration   *prometheus.HistogramVec
	SolveIterations prometheus.Histogram
	SolveSteps      prometheus.Histogram
	SolveResistors  prometheus.Histogram
	SolvesInFlight  prometheus.Gauge
	RendersTotal    *prometheus.CounterVec
	RenderDuration  *prometheus.HistogramVec

	// Cache metrics
	CacheRequestsTotal *prometheus.CounterVec
	CacheWriteBytes    *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all collectors initialized, plus the
// standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{registry: reg}
	r.initSolveMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initSolveMetrics() {
	f := promauto.With(r.registry)

	r.LoadsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "netlist_loads_total",
		Help:      "Netlists decoded, by format and outcome",
	}, []string{"format", "status"})

	r.SolvesTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "solves_total",
		Help:      "Network reductions, by outcome",
	}, []string{"status"})

	r.SolveDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_duration_seconds",
		Help:      "Network reduction latency in seconds",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"status"})

	r.SolveIterations = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_iterations",
		Help:      "Outer reduction iterations per solve",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	r.SolveSteps = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_steps",
		Help:      "Rewrite rule applications per solve",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	})

	r.SolveResistors = f.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "solve_resistors",
		Help:      "Resistors in each network submitted for reduction",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
	})

	r.SolvesInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "solves_in_flight",
		Help:      "Reductions currently running",
	})

	r.RendersTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Diagram renders, by format and outcome",
	}, []string{"format", "status"})

	r.RenderDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Diagram render latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
}

func (r *Registry) initCacheMetrics() {
	f := promauto.With(r.registry)

	r.CacheRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Cache lookups, by key type and result",
	}, []string{"key_type", "result"})

	r.CacheWriteBytes = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_write_bytes_total",
		Help:      "Bytes written to the cache, by key type",
	}, []string{"key_type"})
}

func (r *Registry) initHTTPMetrics() {
	f := promauto.With(r.registry)

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	r.HTTPRequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	r.HTTPRequestsInFlight = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Current number of HTTP requests being processed",
	})
}

// Prometheus returns the underlying Prometheus registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// OnLoad implements [observability.SolveHooks].
func (r *Registry) OnLoad(_ context.Context, _, format string, _ int, _ time.Duration, err error) {
	r.LoadsTotal.WithLabelValues(format, status(err)).Inc()
}

// OnSolveStart implements [observability.SolveHooks].
func (r *Registry) OnSolveStart(_ context.Context, _ string, resistors int) {
	r.SolvesInFlight.Inc()
	r.SolveResistors.Observe(float64(resistors))
}

// OnSolveComplete implements [observability.SolveHooks].
func (r *Registry) OnSolveComplete(_ context.Context, _ string, iterations, steps int, d time.Duration, err error) {
	r.SolvesInFlight.Dec()
	s := status(err)
	r.SolvesTotal.WithLabelValues(s).Inc()
	r.SolveDuration.WithLabelValues(s).Observe(d.Seconds())
	if err == nil {
		r.SolveIterations.Observe(float64(iterations))
		r.SolveSteps.Observe(float64(steps))
	}
}

// OnRenderComplete implements [observability.SolveHooks].
func (r *Registry) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	r.RendersTotal.WithLabelValues(format, status(err)).Inc()
	r.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
}

// OnCacheHit implements [observability.CacheHooks].
func (r *Registry) OnCacheHit(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (r *Registry) OnCacheMiss(_ context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (r *Registry) OnCacheSet(_ context.Context, keyType string, size int) {
	r.CacheWriteBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements [observability.HTTPHooks].
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse implements [observability.HTTPHooks].
func (r *Registry) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	s := strconv.Itoa(code)
	r.HTTPRequestsTotal.WithLabelValues(method, route, s).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
}

var (
	_ observability.SolveHooks = (*Registry)(nil)
	_ observability.CacheHooks = (*Registry)(nil)
	_ observability.HTTPHooks  = (*Registry)(nil)
)
