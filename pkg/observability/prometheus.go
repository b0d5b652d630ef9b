package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks exports every hook event as a Prometheus metric.
type PrometheusHooks struct {
	generateTotal    *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	generateSize     *prometheus.GaugeVec
	renderTotal      *prometheus.CounterVec
	renderDuration   prometheus.Histogram
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpInFlight     prometheus.Gauge
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if a collector is already registered, like MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		generateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nocgen_generate_total",
				Help: "Total number of network generations",
			},
			[]string{"topology", "result"},
		),
		generateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nocgen_generate_duration_seconds",
				Help:    "Time spent building a network descriptor",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"topology"},
		),
		generateSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nocgen_last_network_size",
				Help: "Node and connection counts of the last generated network",
			},
			[]string{"topology", "kind"},
		),
		renderTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nocgen_render_total",
				Help: "Total number of diagram renders",
			},
			[]string{"result"},
		),
		renderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "nocgen_render_duration_seconds",
				Help: "Time spent rendering diagrams",
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nocgen_cache_events_total",
				Help: "Cache lookups and writes",
			},
			[]string{"key_type", "event"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nocgen_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nocgen_http_requests_total",
				Help: "HTTP requests served",
			},
			[]string{"method", "route", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "nocgen_http_request_duration_seconds",
				Help: "HTTP request latency",
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nocgen_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),
	}

	reg.MustRegister(
		h.generateTotal,
		h.generateDuration,
		h.generateSize,
		h.renderTotal,
		h.renderDuration,
		h.cacheEvents,
		h.cacheBytes,
		h.httpRequests,
		h.httpDuration,
		h.httpInFlight,
	)
	return h
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnGenerateStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnGenerateComplete(_ context.Context, topology string, nodes, edges int, d time.Duration, err error) {
	h.generateTotal.WithLabelValues(topology, result(err)).Inc()
	if err != nil {
		return
	}
	h.generateDuration.WithLabelValues(topology).Observe(d.Seconds())
	h.generateSize.WithLabelValues(topology, "nodes").Set(float64(nodes))
	h.generateSize.WithLabelValues(topology, "connections").Set(float64(edges))
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.renderTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		h.renderDuration.Observe(d.Seconds())
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.httpInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.httpInFlight.Dec()
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
