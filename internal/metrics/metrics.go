// Package metrics holds the service's Prometheus collectors on a dedicated
// registry so tests and embedders do not collide with the global one.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolvesActive tracks solves currently running.
	SolvesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "solver_solves_active", Help: "Solves currently running."},
	)
	// SolveDuration records end-to-end solve durations by terminal state.
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solver_solve_duration_seconds", Help: "Solve duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 120, 300, 600}},
		[]string{"state"},
	)
	// Generations counts evolution generations executed.
	Generations = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_generations_total", Help: "Evolution generations executed."},
	)
	// Improvements counts generations that improved the best-known fitness.
	Improvements = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "solver_improvements_total", Help: "Generations improving the best-known fitness."},
	)
	// OperatorOutcomes counts operator applications by operator and outcome.
	OperatorOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solver_operator_outcomes_total", Help: "Operator applications by outcome."},
		[]string{"operator", "outcome"},
	)
	// WebhookDeliveries counts webhook deliveries by event type and status.
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector, plus the Go and process
// collectors, on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolvesActive)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(Generations)
		Registry.MustRegister(Improvements)
		Registry.MustRegister(OperatorOutcomes)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
