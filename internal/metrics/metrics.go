// Package metrics provides Prometheus metrics for the movie tracker.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/movie-tracker/internal/moviedb"
)

const namespace = "movie_tracker"

// Upstream call outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
)

// Manager owns the collectors and the registry they are exposed from.
// A nil *Manager is valid and records nothing.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	upstreamCalls       *prometheus.CounterVec
	listRenders         *prometheus.CounterVec
	listedMovies        prometheus.Gauge
}

// NewManager registers all collectors on a fresh registry.
func NewManager() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "moviedb",
			Name:      "calls_total",
			Help:      "Calls to the movie catalog by operation and outcome.",
		}, []string{"op", "outcome"}),
		listRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "renders_total",
			Help:      "List renders that recomputed rankings, by sort key.",
		}, []string{"sort"}),
		listedMovies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ranking",
			Name:      "movies",
			Help:      "Number of movies ranked by the most recent list render.",
		}),
	}
	m.registry.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.upstreamCalls,
		m.listRenders,
		m.listedMovies,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (m *Manager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one catalog call. It matches moviedb.Observer.
func (m *Manager) ObserveUpstream(op string, err error) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveRanking records a list render over n movies.
func (m *Manager) ObserveRanking(sort string, n int) {
	if m == nil {
		return
	}
	m.listRenders.WithLabelValues(sort).Inc()
	m.listedMovies.Set(float64(n))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, moviedb.ErrUpstreamNotFound):
		return OutcomeNotFound
	default:
		return OutcomeUnavailable
	}
}
