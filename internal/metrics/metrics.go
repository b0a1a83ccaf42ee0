package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cadence labels.
const (
	CadencePrimary   = "primary"
	CadenceWatchlist = "watchlist"
)

// Metrics holds the Prometheus collectors for the analysis cycles.
type Metrics struct {
	CyclesTotal      *prometheus.CounterVec   // labels: cadence
	CycleDuration    *prometheus.HistogramVec // labels: cadence
	AnalysesTotal    *prometheus.CounterVec   // labels: cadence
	SkippedTotal     *prometheus.CounterVec   // labels: cadence
	AlertsTotal      *prometheus.CounterVec   // labels: kind
	NotifyFailures   prometheus.Counter
	WatchlistEntries prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_cycles_total",
			Help: "Completed analysis cycles",
		}, []string{"cadence"}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pricesentinel_cycle_duration_seconds",
			Help:    "Analysis cycle latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"cadence"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_analyses_total",
			Help: "Item analyses produced",
		}, []string{"cadence"}),
		SkippedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_skipped_total",
			Help: "Items skipped because no usable series could be fetched",
		}, []string{"cadence"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricesentinel_alerts_total",
			Help: "Alerts raised (by kind)",
		}, []string{"kind"}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pricesentinel_notify_failures_total",
			Help: "Alert deliveries that failed after retries",
		}),
		WatchlistEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricesentinel_watchlist_entries",
			Help: "Entries seen by the last watchlist sweep",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.AnalysesTotal,
		m.SkippedTotal,
		m.AlertsTotal,
		m.NotifyFailures,
		m.WatchlistEntries,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
