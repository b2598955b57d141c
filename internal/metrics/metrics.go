package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the sync metrics. A nil *Registry is a valid no-op.
type Registry struct {
	registry *prometheus.Registry

	SyncRunsTotal   *prometheus.CounterVec
	SyncDuration    prometheus.Histogram
	UpsertsTotal    *prometheus.CounterVec
	ProbesTotal     *prometheus.CounterVec
	CatalogSize     prometheus.Gauge
	LastSyncSuccess prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.SyncRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsservices_sync_runs_total",
			Help: "Total number of sync runs by result",
		},
		[]string{"result"},
	)

	r.SyncDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "awsservices_sync_duration_seconds",
			Help:    "Sync run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	r.UpsertsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsservices_upserts_total",
			Help: "Total number of service node upserts by status",
		},
		[]string{"status"},
	)

	r.ProbesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "awsservices_probe_total",
			Help: "Total number of graph store connectivity probes by status",
		},
		[]string{"status"},
	)

	r.CatalogSize = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "awsservices_catalog_size",
			Help: "Number of names returned by the catalog in the last run",
		},
	)

	r.LastSyncSuccess = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "awsservices_last_sync_success_timestamp_seconds",
			Help: "Unix time of the last sync run that was not aborted",
		},
	)

	return r
}

// RecordSync records a finished run. result is one of completed, aborted, failed.
func (r *Registry) RecordSync(result string, duration time.Duration) {
	if r == nil {
		return
	}
	r.SyncRunsTotal.WithLabelValues(result).Inc()
	r.SyncDuration.Observe(duration.Seconds())
	if result == "completed" {
		r.LastSyncSuccess.SetToCurrentTime()
	}
}

func (r *Registry) RecordUpsert(err error) {
	if r == nil {
		return
	}
	r.UpsertsTotal.WithLabelValues(status(err)).Inc()
}

func (r *Registry) RecordProbe(err error) {
	if r == nil {
		return
	}
	r.ProbesTotal.WithLabelValues(status(err)).Inc()
}

func (r *Registry) SetCatalogSize(n int) {
	if r == nil {
		return
	}
	r.CatalogSize.Set(float64(n))
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Gatherer(), promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
