// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "compara"

// Metrics groups the application counters
type Metrics struct {
	AdvisorRequests  *prometheus.CounterVec
	VoiceSessions    *prometheus.CounterVec
	ListMutations    *prometheus.CounterVec
	CatalogMutations *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		AdvisorRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisor_requests_total",
			Help:      "Savings advice requests by outcome (ai, empty_list, empty_response, fallback).",
		}, []string{"outcome"}),
		VoiceSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_sessions_total",
			Help:      "Voice search sessions by outcome (completed, failed).",
		}, []string{"outcome"}),
		ListMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shopping_list_mutations_total",
			Help:      "Shopping list mutations by operation.",
		}, []string{"op"}),
		CatalogMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_mutations_total",
			Help:      "Supermarket configuration changes by operation.",
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(m.AdvisorRequests, m.VoiceSessions, m.ListMutations, m.CatalogMutations, m.HTTPRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
