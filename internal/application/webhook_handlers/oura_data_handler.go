package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

// OuraDataHandler forwards Oura event notifications to the health data
// service.
type OuraDataHandler struct {
	forwarder HealthForwarder
	logger    zerolog.Logger
}

// NewOuraDataHandler creates the Oura notification handler.
func NewOuraDataHandler(forwarder HealthForwarder, logger zerolog.Logger) *OuraDataHandler {
	return &OuraDataHandler{
		forwarder: forwarder,
		logger:    logger.With().Str("handler", "oura_data").Logger(),
	}
}

// CanHandle claims every Oura event; Oura sends one typed object per delivery.
func (h *OuraDataHandler) CanHandle(event *domain.WebhookEvent) bool {
	return event.Provider == "oura"
}

// Handle re-parses the delivery payload and forwards it.
func (h *OuraDataHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var parsed domain.OuraEvent
	if err := json.Unmarshal(event.Payload, &parsed); err != nil {
		return fmt.Errorf("parse oura payload: %w", err)
	}

	if err := h.forwarder.ForwardOuraEvent(ctx, &parsed); err != nil {
		return err
	}

	h.logger.Info().
		Str("eventType", parsed.EventType).
		Str("object", parsed.Object).
		Msg("Forwarded Oura notification")
	return nil
}
