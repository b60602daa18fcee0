// Package metrics exposes Prometheus counters for data fetches, universe scans
// and alert deliveries. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal       *prometheus.CounterVec // labels: provider, outcome
	ScanDuration       *prometheus.HistogramVec
	ScanEntriesTotal   *prometheus.CounterVec // labels: indicator, outcome
	DeliveriesTotal    *prometheus.CounterVec // labels: outcome
	BroadcastsTotal    prometheus.Counter
	SubscribersGauge   prometheus.Gauge
	WebhookAlertsTotal *prometheus.CounterVec // labels: status
}

// New registers and returns all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bist_fetches_total",
			Help: "Price history fetches by provider and outcome",
		}, []string{"provider", "outcome"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bist_scan_duration_seconds",
			Help:    "Wall-clock duration of a universe scan",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"indicator"}),
		ScanEntriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bist_scan_entries_total",
			Help: "Scanned symbols by indicator and outcome",
		}, []string{"indicator", "outcome"}),
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bist_deliveries_total",
			Help: "Per-recipient message deliveries by outcome",
		}, []string{"outcome"}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bist_broadcasts_total",
			Help: "Broadcasts started",
		}),
		SubscribersGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bist_subscribers",
			Help: "Registered alert subscribers",
		}),
		WebhookAlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bist_webhook_alerts_total",
			Help: "Inbound webhook alerts by response status",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.FetchesTotal,
		m.ScanDuration,
		m.ScanEntriesTotal,
		m.DeliveriesTotal,
		m.BroadcastsTotal,
		m.SubscribersGauge,
		m.WebhookAlertsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch counts one provider fetch.
func (m *Metrics) ObserveFetch(provider string, err error) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(provider, outcome(err)).Inc()
}

// ObserveScan records a finished scan.
func (m *Metrics) ObserveScan(indicator string, succeeded, failed int, d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(indicator).Observe(d.Seconds())
	m.ScanEntriesTotal.WithLabelValues(indicator, "ok").Add(float64(succeeded))
	m.ScanEntriesTotal.WithLabelValues(indicator, "error").Add(float64(failed))
}

// ObserveDelivery counts one per-recipient send.
func (m *Metrics) ObserveDelivery(err error) {
	if m == nil {
		return
	}
	m.DeliveriesTotal.WithLabelValues(outcome(err)).Inc()
}

// ObserveBroadcast counts a started broadcast.
func (m *Metrics) ObserveBroadcast() {
	if m == nil {
		return
	}
	m.BroadcastsTotal.Inc()
}

// SetSubscribers records the current subscriber count.
func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.SubscribersGauge.Set(float64(n))
}

// ObserveWebhook counts an inbound webhook alert by HTTP status.
func (m *Metrics) ObserveWebhook(status int) {
	if m == nil {
		return
	}
	m.WebhookAlertsTotal.WithLabelValues(http.StatusText(status)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
