package api

import (
	"errors"
	"net/http"
	"time"

	"jarvis-integrations-layer/internal/application"
	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// IntegrationHandlers serves integration management and service discovery.
type IntegrationHandlers struct {
	integrations *application.IntegrationService
	registry     *providers.Registry
	logger       zerolog.Logger
}

// NewIntegrationHandlers creates the integration HTTP handlers.
func NewIntegrationHandlers(integrations *application.IntegrationService, registry *providers.Registry, logger zerolog.Logger) *IntegrationHandlers {
	return &IntegrationHandlers{
		integrations: integrations,
		registry:     registry,
		logger:       logger.With().Str("component", "integration_handlers").Logger(),
	}
}

// integrationView is the client-facing shape of an integration. Tokens never
// leave the service.
type integrationView struct {
	Service   string     `json:"service"`
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Scope     string     `json:"scope,omitempty"`
	LastUsed  time.Time  `json:"last_used"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func toView(i *domain.Integration) integrationView {
	return integrationView{
		Service:   i.Service,
		Status:    string(i.Status),
		ExpiresAt: i.ExpiresAt,
		Scope:     i.Scope,
		LastUsed:  i.LastUsed,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}

// List handles GET /api/integrations.
func (h *IntegrationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())

	integrations, err := h.integrations.List(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list integrations")
		respondError(w, http.StatusInternalServerError, "Failed to list integrations")
		return
	}

	views := make([]integrationView, 0, len(integrations))
	for _, i := range integrations {
		views = append(views, toView(i))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"integrations": views,
	})
}

// Delete handles DELETE /api/integrations/{service}.
func (h *IntegrationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	service := chi.URLParam(r, "service")

	deleted, err := h.integrations.Delete(r.Context(), userID, service)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, "OAuth configuration not found for service")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("service", service).Msg("Failed to delete integration")
		respondError(w, http.StatusInternalServerError, "Failed to delete integration")
		return
	case !deleted:
		respondError(w, http.StatusNotFound, "Integration not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Disconnect handles POST /api/integrations/{service}/disconnect, marking the
// integration inactive while keeping the stored credential.
func (h *IntegrationHandlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())
	service := chi.URLParam(r, "service")

	err := h.integrations.Disconnect(r.Context(), userID, service)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, "OAuth configuration not found for service")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("service", service).Msg("Failed to disconnect integration")
		respondError(w, http.StatusInternalServerError, "Failed to disconnect integration")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// PublicServices handles GET /api/services/public: the descriptors of every
// configured service, for the connect screen. No auth required.
func (h *IntegrationHandlers) PublicServices(w http.ResponseWriter, r *http.Request) {
	var services []providers.Descriptor
	for _, name := range h.registry.Configured() {
		if d, err := h.registry.Describe(name); err == nil {
			services = append(services, d)
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"services": services,
	})
}
