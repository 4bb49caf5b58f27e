// Package metrics exposes the API's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campus_api"

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	GeometryFailures prometheus.Counter
	GraphTriples     prometheus.Gauge
	OccupancyLookups *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance on a private registry, including the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		GeometryFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "geometry",
				Name:      "conversion_failures_total",
				Help:      "Geometries that could not be converted and were returned as null",
			},
		),

		GraphTriples: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "graph",
				Name:      "triples",
				Help:      "Number of statements in the loaded ontology",
			},
		),

		OccupancyLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "occupancy",
				Name:      "live_lookups_total",
				Help:      "Live occupancy lookups by outcome (hit, miss, error)",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.RequestDuration,
		m.GeometryFailures,
		m.GraphTriples,
		m.OccupancyLookups,
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// RecordRequest counts a finished request and observes its duration.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordOccupancyLookup counts a live occupancy lookup outcome.
func (m *Metrics) RecordOccupancyLookup(outcome string) {
	m.OccupancyLookups.WithLabelValues(outcome).Inc()
}

// SetGraphTriples records the size of the loaded ontology.
func (m *Metrics) SetGraphTriples(n int) {
	m.GraphTriples.Set(float64(n))
}
