// Package metrics provides Prometheus metrics for the webhook pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the bot backend
type Metrics struct {
	EventsTotal        *prometheus.CounterVec
	SignatureFailures  prometheus.Counter
	HandshakesTotal    prometheus.Counter
	FlowExecutions     *prometheus.CounterVec
	DispatchesTotal    *prometheus.CounterVec
	ModelRequestsTotal *prometheus.CounterVec
}

// New creates and registers all metrics on the default registry
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all metrics on the given registerer. Counters panic on
// duplicate registration, so call this once per registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mousebot_webhook_events_total",
				Help: "Webhook events received, by event type",
			},
			[]string{"type"},
		),
		SignatureFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mousebot_signature_failures_total",
				Help: "Webhook requests rejected for bad or missing signatures",
			},
		),
		HandshakesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mousebot_handshakes_total",
				Help: "Endpoint validation handshakes answered",
			},
		),
		FlowExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mousebot_flow_executions_total",
				Help: "Flow executions, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		DispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mousebot_dispatches_total",
				Help: "Outbound reply attempts, by outcome",
			},
			[]string{"outcome"},
		),
		ModelRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mousebot_model_requests_total",
				Help: "Model invocations recorded in the ledger, by status",
			},
			[]string{"status"},
		),
	}
}
