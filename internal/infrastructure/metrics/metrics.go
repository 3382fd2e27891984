// Package metrics exposes Prometheus counters for the integration layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	WebhooksReceived *prometheus.CounterVec
	WebhooksRejected *prometheus.CounterVec
	TokenExchanges   *prometheus.CounterVec
	TokenRefreshes   *prometheus.CounterVec
	CompletionRuns   *prometheus.CounterVec
}

// New registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WebhooksReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "integrations_webhooks_received_total",
			Help: "Webhook deliveries that passed signature verification.",
		}, []string{"provider", "topic"}),
		WebhooksRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "integrations_webhooks_rejected_total",
			Help: "Webhook deliveries rejected before dispatch.",
		}, []string{"provider", "reason"}),
		TokenExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "integrations_token_exchanges_total",
			Help: "Authorization code exchanges by service and outcome.",
		}, []string{"service", "outcome"}),
		TokenRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "integrations_token_refreshes_total",
			Help: "Refresh token grants by service and outcome.",
		}, []string{"service", "outcome"}),
		CompletionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "integrations_completion_runs_total",
			Help: "Integration completion requests by terminal status.",
		}, []string{"status"}),
	}
}
