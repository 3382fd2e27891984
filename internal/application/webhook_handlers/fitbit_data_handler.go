// Package webhook_handlers contains the per-topic processors behind the
// webhook dispatcher.
package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

// HealthForwarder relays verified provider notifications downstream to the
// health data service.
type HealthForwarder interface {
	ForwardFitbitEvents(ctx context.Context, events []domain.FitbitEvent) error
	ForwardOuraEvent(ctx context.Context, event *domain.OuraEvent) error
}

// fitbitDataCollections are the collection types that carry syncable data.
var fitbitDataCollections = map[string]bool{
	"activities": true,
	"body":       true,
	"foods":      true,
	"sleep":      true,
}

// FitbitDataHandler forwards Fitbit data-change notifications to the health
// data service for targeted resync.
type FitbitDataHandler struct {
	forwarder HealthForwarder
	logger    zerolog.Logger
}

// NewFitbitDataHandler creates the Fitbit data-change handler.
func NewFitbitDataHandler(forwarder HealthForwarder, logger zerolog.Logger) *FitbitDataHandler {
	return &FitbitDataHandler{
		forwarder: forwarder,
		logger:    logger.With().Str("handler", "fitbit_data").Logger(),
	}
}

// CanHandle claims Fitbit events for known data collections.
func (h *FitbitDataHandler) CanHandle(event *domain.WebhookEvent) bool {
	return event.Provider == "fitbit" && fitbitDataCollections[event.Topic]
}

// Handle re-parses the delivery payload and forwards the entries matching
// this event's collection.
func (h *FitbitDataHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var all []domain.FitbitEvent
	if err := json.Unmarshal(event.Payload, &all); err != nil {
		return fmt.Errorf("parse fitbit payload: %w", err)
	}

	var matching []domain.FitbitEvent
	for _, e := range all {
		if e.CollectionType == event.Topic {
			matching = append(matching, e)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	if err := h.forwarder.ForwardFitbitEvents(ctx, matching); err != nil {
		return err
	}

	h.logger.Info().
		Str("collection", event.Topic).
		Int("events", len(matching)).
		Msg("Forwarded Fitbit data notifications")
	return nil
}
