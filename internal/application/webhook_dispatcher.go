package application

import (
	"context"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

// WebhookHandler processes one kind of verified webhook event.
type WebhookHandler interface {
	// CanHandle reports whether this handler processes the given event.
	CanHandle(event *domain.WebhookEvent) bool

	// Handle processes the event. Errors are logged by the dispatcher and
	// never surfaced to the delivering provider.
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes verified webhook events to registered handlers and
// fans them out to pub/sub subscribers. Unverified events are never accepted.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	pubsub   *pubsub.EventPubSub
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a dispatcher. pubsub may be nil.
func NewWebhookDispatcher(ps *pubsub.EventPubSub, m *metrics.Metrics, logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		pubsub:  ps,
		metrics: m,
		logger:  logger.With().Str("component", "webhook_dispatcher").Logger(),
	}
}

// RegisterHandler adds a handler. Not safe for concurrent use with Dispatch;
// register everything during startup.
func (d *WebhookDispatcher) RegisterHandler(handler WebhookHandler) {
	d.handlers = append(d.handlers, handler)
}

// Dispatch routes a verified event to every matching handler. An event no
// handler claims is logged and dropped; the provider already got its 204.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) {
	if !event.Verified {
		d.logger.Error().
			Str("provider", event.Provider).
			Str("topic", event.Topic).
			Msg("Refusing to dispatch unverified webhook event")
		return
	}

	if d.metrics != nil {
		d.metrics.WebhooksReceived.WithLabelValues(event.Provider, event.Topic).Inc()
	}
	if d.pubsub != nil {
		d.pubsub.Publish(event)
	}

	handled := 0
	for _, handler := range d.handlers {
		if !handler.CanHandle(event) {
			continue
		}
		handled++
		if err := handler.Handle(ctx, event); err != nil {
			d.logger.Error().Err(err).
				Str("provider", event.Provider).
				Str("topic", event.Topic).
				Msg("Webhook handler failed")
		}
	}

	if handled == 0 {
		d.logger.Warn().
			Str("provider", event.Provider).
			Str("topic", event.Topic).
			Msg("No handler for webhook event")
		return
	}

	d.logger.Debug().
		Str("provider", event.Provider).
		Str("topic", event.Topic).
		Int("handlers", handled).
		Msg("Webhook event dispatched")
}
