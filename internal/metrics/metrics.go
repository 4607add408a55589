// Package metrics exports Prometheus metrics for the API server by
// implementing the observability hooks.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/prodgraph/pkg/observability"
)

const namespace = "prodgraph"

// Label names.
const (
	LabelStage     = "stage"
	LabelResult    = "result"
	LabelMethod    = "method"
	LabelRoute     = "route"
	LabelStatus    = "status"
	LabelFormat    = "format"
	LabelDirection = "direction"
)

// Label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"
)

// HTTPLatencyBuckets are the request duration buckets in seconds.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// Metrics holds all collectors. It implements the pipeline, cache and HTTP
// hooks of package observability.
type Metrics struct {
	registry *prometheus.Registry

	StageDuration  *prometheus.HistogramVec
	StageTotal     *prometheus.CounterVec
	ChainNodes     prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
	CacheBytes     *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	HTTPInFlight   prometheus.Gauge
	HTTPRateLimits *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelStage}),
		StageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_total",
			Help:      "Pipeline stage executions by result.",
		}, []string{LabelStage, LabelResult}),
		ChainNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_nodes",
			Help:      "Number of nodes per resolved chain.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by stage and result.",
		}, []string{LabelStage, LabelResult}),
		CacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by stage.",
		}, []string{LabelStage}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests.",
		}, []string{LabelMethod, LabelRoute, LabelStatus}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of served HTTP requests.",
			Buckets:   HTTPLatencyBuckets,
		}, []string{LabelMethod, LabelRoute}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		HTTPRateLimits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{LabelRoute}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.StageDuration, m.StageTotal, m.ChainNodes,
		m.CacheLookups, m.CacheBytes,
		m.HTTPRequests, m.HTTPDuration, m.HTTPInFlight, m.HTTPRateLimits,
	)
	return m
}

// Register installs m as the global observability hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeStage(stage string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	m.StageTotal.WithLabelValues(stage, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func (m *Metrics) OnResolveStart(context.Context, string, string) {}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, nodes int, d time.Duration, err error) {
	m.observeStage("resolve", d, err)
	if err == nil {
		m.ChainNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.observeStage("layout", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.observeStage("render", d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, ResultHit).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, ResultMiss).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnRateLimited(_ context.Context, route string) {
	m.HTTPRateLimits.WithLabelValues(route).Inc()
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
