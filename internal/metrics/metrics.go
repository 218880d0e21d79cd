// Package metrics exposes Prometheus counters for the chatbot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rhea"

// Metrics holds the registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	messages    *prometheus.CounterVec
	emergencies prometheus.Counter
	latency     *prometheus.HistogramVec
	articles    *prometheus.CounterVec
	sessions    prometheus.Gauge
}

// New registers the chatbot collectors, plus Go and process collectors, on
// a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: reg,
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Processed messages by dispatch route and session language.",
		}, []string{"route", "language"}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergencies_total",
			Help:      "Messages answered with the emergency block.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_duration_seconds",
			Help:      "Time spent processing a message.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"route"}),
		articles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_ingested_total",
			Help:      "Articles loaded into the health data store.",
		}, []string{"source", "origin"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the server.",
		}),
	}
	reg.MustRegister(m.messages, m.emergencies, m.latency, m.articles, m.sessions)
	return m
}

// ObserveMessage records one processed message.
func (m *Metrics) ObserveMessage(route, language string, d time.Duration) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(route, language).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
	if route == "emergency" {
		m.emergencies.Inc()
	}
}

// ArticlesIngested records n articles from source.
func (m *Metrics) ArticlesIngested(source string, fallback bool, n int) {
	if m == nil || n <= 0 {
		return
	}
	origin := "live"
	if fallback {
		origin = "fallback"
	}
	m.articles.WithLabelValues(source, origin).Add(float64(n))
}

// SetActiveSessions reports the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
