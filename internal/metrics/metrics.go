// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors for vidshelf. Collectors
// live on a private registry so tests can build independent instances.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest kinds.
const (
	KindRemote = "remote"
	KindLocal  = "local"
)

// Ingest outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// Metrics groups every collector exported at /metrics.
type Metrics struct {
	registry *prometheus.Registry

	IngestTotal       *prometheus.CounterVec
	ThumbnailDuration *prometheus.HistogramVec
	RequestDuration   *prometheus.HistogramVec
	RequestsInFlight  prometheus.Gauge
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	TasksInFlight     prometheus.Gauge
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		IngestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vidshelf_ingest_total",
				Help: "Video ingest attempts, by source kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),

		ThumbnailDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidshelf_thumbnail_duration_seconds",
				Help:    "Time spent acquiring a thumbnail, by source kind.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"kind"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vidshelf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds, by route, method and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),

		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidshelf_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidshelf_page_cache_hits_total",
			Help: "Rendered pages served from the page cache.",
		}),

		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidshelf_page_cache_misses_total",
			Help: "Rendered pages that had to be built.",
		}),

		TasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidshelf_thumbnail_tasks_in_flight",
			Help: "Background thumbnail tasks pending or running.",
		}),
	}

	m.registry.MustRegister(
		m.IngestTotal,
		m.ThumbnailDuration,
		m.RequestDuration,
		m.RequestsInFlight,
		m.CacheHits,
		m.CacheMisses,
		m.TasksInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterDB exports connection pool statistics for db.
func (m *Metrics) RegisterDB(db *sql.DB, name string) {
	if m == nil {
		return
	}
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Ingest counts one ingest attempt.
func (m *Metrics) Ingest(kind, outcome string) {
	if m == nil {
		return
	}
	m.IngestTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveThumbnail records how long a thumbnail acquisition took.
func (m *Metrics) ObserveThumbnail(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ThumbnailDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// CacheLookup counts a page cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// TaskStarted and TaskFinished track the background task gauge.
func (m *Metrics) TaskStarted() {
	if m != nil {
		m.TasksInFlight.Inc()
	}
}

func (m *Metrics) TaskFinished() {
	if m != nil {
		m.TasksInFlight.Dec()
	}
}
