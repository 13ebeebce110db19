package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/erdsync/pkg/observability"
)

const namespace = "erdsync"

// Metrics holds the Prometheus collectors for one server. Each instance owns
// its registry, so tests can build as many servers as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Parses        *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec
	ParsedNodes   prometheus.Histogram
	IgnoredLines  prometheus.Counter
	WriteBacks    *prometheus.CounterVec
	Renders       *prometheus.CounterVec
	RenderSeconds *prometheus.HistogramVec

	CacheRequests *prometheus.CounterVec
	CacheBytes    prometheus.Counter
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Parse passes by caller",
		}, []string{"source"}),
		ParseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Parse pass duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"source"}),
		ParsedNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parsed_nodes",
			Help:      "Nodes produced per parse pass",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		IgnoredLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ignored_lines_total",
			Help:      "Lines that contributed nothing to a model",
		}),
		WriteBacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writebacks_total",
			Help:      "Position write-backs by outcome",
		}, []string{"applied"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Renders by format and outcome",
		}, []string{"format", "status"}),
		RenderSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Render duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Artifact cache lookups and writes",
		}, []string{"kind", "result"}),
		CacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the artifact cache",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests, m.HTTPDuration,
		m.Parses, m.ParseDuration, m.ParsedNodes, m.IgnoredLines,
		m.WriteBacks, m.Renders, m.RenderSeconds,
		m.CacheRequests, m.CacheBytes,
	)
	return m
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// =============================================================================
// observability hooks
// =============================================================================

var (
	_ observability.SyncHooks  = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
)

func (m *Metrics) OnParse(_ context.Context, source string, nodes, ignored int, d time.Duration) {
	m.Parses.WithLabelValues(source).Inc()
	m.ParseDuration.WithLabelValues(source).Observe(d.Seconds())
	m.ParsedNodes.Observe(float64(nodes))
	m.IgnoredLines.Add(float64(ignored))
}

func (m *Metrics) OnWriteBack(_ context.Context, _ string, applied bool) {
	m.WriteBacks.WithLabelValues(strconv.FormatBool(applied)).Inc()
}

func (m *Metrics) OnRender(_ context.Context, format string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.Renders.WithLabelValues(format, status).Inc()
	m.RenderSeconds.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.CacheRequests.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.CacheRequests.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.CacheRequests.WithLabelValues(kind, "set").Inc()
	m.CacheBytes.Add(float64(size))
}

// =============================================================================
// HTTP middleware
// =============================================================================

// instrument records request counts and latency labelled by chi route
// pattern, so ids in paths do not explode label cardinality.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
