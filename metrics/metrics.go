// Package metrics provides Prometheus metrics for drivetree.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one drivetree instance.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	remoteCallsTotal      *prometheus.CounterVec
	remoteCallDuration    *prometheus.HistogramVec
	cacheRefreshDuration  prometheus.Histogram
	cacheRefreshesTotal   *prometheus.CounterVec
	cacheNodes            *prometheus.GaugeVec
	transfersTotal        *prometheus.CounterVec
	transferredBytesTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		remoteCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivetree_remote_calls_total",
				Help: "Total number of calls to the remote store",
			},
			[]string{"operation", "status"},
		),
		remoteCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "drivetree_remote_call_duration_seconds",
				Help:    "Remote store call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheRefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drivetree_cache_refresh_duration_seconds",
				Help:    "Time to rebuild the registry cache from the remote store",
				Buckets: prometheus.DefBuckets,
			},
		),
		cacheRefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivetree_cache_refreshes_total",
				Help: "Total number of registry cache refreshes",
			},
			[]string{"status"},
		),
		cacheNodes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drivetree_cache_nodes",
				Help: "Number of nodes in the registry cache",
			},
			[]string{"scope"},
		),
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivetree_transfers_total",
				Help: "Total number of file transfers",
			},
			[]string{"direction", "status"},
		),
		transferredBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drivetree_transferred_bytes_total",
				Help: "Total bytes transferred",
			},
			[]string{"direction"},
		),
	}
}

// Directions of a transfer.
const (
	DirectionPush = "push"
	DirectionPull = "pull"
)

// RecordRemoteCall records one call to the remote store.
func (m *Metrics) RecordRemoteCall(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.remoteCallsTotal.WithLabelValues(operation, status(err)).Inc()
	m.remoteCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRefresh records a cache refresh and the size of the resulting snapshot.
func (m *Metrics) RecordRefresh(duration time.Duration, live, trashed int, err error) {
	if m == nil {
		return
	}
	m.cacheRefreshesTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	m.cacheRefreshDuration.Observe(duration.Seconds())
	m.cacheNodes.WithLabelValues("live").Set(float64(live))
	m.cacheNodes.WithLabelValues("trashed").Set(float64(trashed))
}

// RecordTransfer records one file pushed or pulled.
func (m *Metrics) RecordTransfer(direction string, bytes int64, err error) {
	if m == nil {
		return
	}
	m.transfersTotal.WithLabelValues(direction, status(err)).Inc()
	if err == nil {
		m.transferredBytesTotal.WithLabelValues(direction).Add(float64(bytes))
	}
}

// Handler returns the HTTP handler exposing the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
