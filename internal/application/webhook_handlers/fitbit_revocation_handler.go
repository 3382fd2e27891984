package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/ports"

	"github.com/rs/zerolog"
)

// FitbitRevocationHandler deactivates the stored integration when a user
// revokes access from Fitbit's side. The subscription id is our own user id,
// assigned when the subscription was registered.
type FitbitRevocationHandler struct {
	integrations ports.IntegrationRepository
	logger       zerolog.Logger
}

// NewFitbitRevocationHandler creates the revocation handler.
func NewFitbitRevocationHandler(integrations ports.IntegrationRepository, logger zerolog.Logger) *FitbitRevocationHandler {
	return &FitbitRevocationHandler{
		integrations: integrations,
		logger:       logger.With().Str("handler", "fitbit_revocation").Logger(),
	}
}

// CanHandle claims Fitbit access-revocation events.
func (h *FitbitRevocationHandler) CanHandle(event *domain.WebhookEvent) bool {
	return event.Provider == "fitbit" && event.Topic == "userRevokedAccess"
}

// Handle marks the revoking user's Fitbit integration inactive. The stored
// tokens are kept so a reconnect reuses the row.
func (h *FitbitRevocationHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var all []domain.FitbitEvent
	if err := json.Unmarshal(event.Payload, &all); err != nil {
		return fmt.Errorf("parse fitbit payload: %w", err)
	}

	for _, e := range all {
		if e.CollectionType != "userRevokedAccess" || e.SubscriptionID == "" {
			continue
		}
		if err := h.integrations.UpdateStatus(ctx, e.SubscriptionID, "fitbit", domain.IntegrationInactive); err != nil {
			h.logger.Warn().Err(err).
				Str("userId", e.SubscriptionID).
				Msg("Failed to deactivate revoked Fitbit integration")
			continue
		}
		h.logger.Info().
			Str("userId", e.SubscriptionID).
			Msg("Fitbit access revoked, integration deactivated")
	}

	return nil
}
