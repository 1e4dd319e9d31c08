// Package metrics provides a Prometheus implementation of
// notefavicon.MetricsRecorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	notefavicon "github.com/dgduncan/go-note-favicon"
)

// PrometheusRecorder records cache and fetch events using Prometheus.
type PrometheusRecorder struct {
	resolveTotal     *prometheus.CounterVec
	fetchTotal       *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
	cacheWritesTotal *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder using the default Prometheus registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	return NewPrometheusRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPrometheusRecorderWithRegistry creates a recorder registered with reg.
// Use this for testing.
func NewPrometheusRecorderWithRegistry(reg prometheus.Registerer) *PrometheusRecorder {
	resolveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notefavicon_resolve_total",
		Help: "Total favicon resolutions by value kind and outcome",
	}, []string{"kind", "outcome"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notefavicon_fetch_total",
		Help: "Total favicon provider fetches",
	}, []string{"result"})

	fetchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "notefavicon_fetch_duration_seconds",
		Help:    "Favicon provider fetch latency",
		Buckets: prometheus.DefBuckets,
	})

	cacheWritesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notefavicon_cache_writes_total",
		Help: "Total cache document writes",
	}, []string{"result"})

	reg.MustRegister(
		resolveTotal,
		fetchTotal,
		fetchDuration,
		cacheWritesTotal,
	)

	return &PrometheusRecorder{
		resolveTotal:     resolveTotal,
		fetchTotal:       fetchTotal,
		fetchDuration:    fetchDuration,
		cacheWritesTotal: cacheWritesTotal,
	}
}

func (p *PrometheusRecorder) RecordResolve(kind notefavicon.Kind, outcome string) {
	p.resolveTotal.WithLabelValues(kind.String(), outcome).Inc()
}

func (p *PrometheusRecorder) RecordFetch(success bool, duration time.Duration) {
	p.fetchTotal.WithLabelValues(result(success)).Inc()
	p.fetchDuration.Observe(duration.Seconds())
}

func (p *PrometheusRecorder) RecordCacheWrite(success bool) {
	p.cacheWritesTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Ensure PrometheusRecorder implements notefavicon.MetricsRecorder
var _ notefavicon.MetricsRecorder = (*PrometheusRecorder)(nil)
