package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"jarvis-integrations-layer/internal/application"
	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

// OAuthHandlers serves the two server-side legs of the authorization flow.
type OAuthHandlers struct {
	oauth       *application.OAuthService
	completions *application.CompletionService
	logger      zerolog.Logger
}

// NewOAuthHandlers creates the OAuth HTTP handlers. completions may be nil
// when no assistant backend is configured.
func NewOAuthHandlers(oauth *application.OAuthService, completions *application.CompletionService, logger zerolog.Logger) *OAuthHandlers {
	return &OAuthHandlers{
		oauth:       oauth,
		completions: completions,
		logger:      logger.With().Str("component", "oauth_handlers").Logger(),
	}
}

type initiateRequest struct {
	Service   string `json:"service"`
	Reconnect bool   `json:"reconnect"`
}

// Initiate handles POST /api/oauth/initiate.
func (h *OAuthHandlers) Initiate(w http.ResponseWriter, r *http.Request) {
	var body initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Service == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.oauth.Initiate(r.Context(), body.Service, body.Reconnect)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, "OAuth configuration not found for service")
		return
	case errors.Is(err, domain.ErrMisconfiguredClient):
		respondError(w, http.StatusInternalServerError, "OAuth client not configured for service")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("service", body.Service).Msg("OAuth initiation failed")
		respondError(w, http.StatusInternalServerError, "Failed to initiate OAuth flow")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"auth_url": result.AuthURL,
		"state":    result.State,
		"use_pkce": result.UsePKCE,
	})
}

type exchangeRequest struct {
	Service string `json:"service"`
	Code    string `json:"code"`
	State   string `json:"state"`
}

type exchangeResponse struct {
	Success     bool            `json:"success"`
	Integration integrationView `json:"integration"`
	Reconnect   bool            `json:"reconnect"`
	RequestID   string          `json:"request_id,omitempty"`
}

// Exchange handles POST /api/oauth/exchange.
func (h *OAuthHandlers) Exchange(w http.ResponseWriter, r *http.Request) {
	userID := domain.GetUserIDFromContext(r.Context())

	var body exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Service == "" || body.Code == "" || body.State == "" {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.oauth.Exchange(r.Context(), userID, body.Service, body.Code, body.State)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, "OAuth configuration not found for service")
		return
	case errors.Is(err, domain.ErrStateNotFound):
		respondError(w, http.StatusBadRequest, "Invalid or expired state parameter")
		return
	case domain.IsTokenExchangeError(err):
		h.logger.Warn().Err(err).Str("service", body.Service).Msg("Provider rejected token exchange")
		respondError(w, http.StatusBadGateway, "Token exchange rejected by provider")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("service", body.Service).Msg("OAuth exchange failed")
		respondError(w, http.StatusInternalServerError, "Failed to complete OAuth flow")
		return
	}

	resp := exchangeResponse{
		Success:     true,
		Integration: toView(result.Integration),
		Reconnect:   result.Reconnect,
	}

	// First-time connections get a conversational setup pass; reconnects skip it.
	if h.completions != nil && !result.Reconnect {
		message := fmt.Sprintf("I just connected my %s account. Please finish setting it up.", result.Integration.Service)
		req, cerr := h.completions.Create(r.Context(), userID, result.Integration.Service, message)
		if cerr != nil {
			h.logger.Error().Err(cerr).
				Str("service", result.Integration.Service).
				Msg("Failed to create completion request")
		} else {
			resp.RequestID = req.RequestID
			go func(requestID string) {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				_ = h.completions.Run(ctx, requestID)
			}(req.RequestID)
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
