package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the livestream service.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    prometheus.Counter
	errorsTotal      prometheus.Counter
	webhooksTotal    *prometheus.CounterVec
	playerViewsTotal prometheus.Counter
	liveStreams      prometheus.Gauge
}

// New creates and registers Prometheus metrics for the service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mux_livestream_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mux_livestream_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	webhooksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mux_livestream_webhooks_total",
		Help: "Webhook deliveries by outcome (applied, ignored, malformed, rejected, failed)",
	}, []string{"outcome"})
	playerViewsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mux_livestream_player_views_total",
		Help: "Total number of rendered player widgets",
	})
	liveStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mux_livestream_live_streams",
		Help: "Number of streams currently marked live",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		webhooksTotal,
		playerViewsTotal,
		liveStreams,
	)

	return &Metrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		errorsTotal:      errorsTotal,
		webhooksTotal:    webhooksTotal,
		playerViewsTotal: playerViewsTotal,
		liveStreams:      liveStreams,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncWebhook increments the webhook counter for the given outcome.
func (m *Metrics) IncWebhook(outcome string) {
	m.webhooksTotal.WithLabelValues(outcome).Inc()
}

// IncPlayerViews increments the rendered player counter.
func (m *Metrics) IncPlayerViews() {
	m.playerViewsTotal.Inc()
}

// SetLiveStreams sets the live streams gauge.
func (m *Metrics) SetLiveStreams(n int) {
	m.liveStreams.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. live streams).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
