package api

import (
	"errors"
	"net/http"

	"jarvis-integrations-layer/internal/application"
	"jarvis-integrations-layer/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RequestHandlers serves completion request tracking for polling clients.
type RequestHandlers struct {
	completions *application.CompletionService
	logger      zerolog.Logger
}

// NewRequestHandlers creates the request tracking HTTP handlers.
func NewRequestHandlers(completions *application.CompletionService, logger zerolog.Logger) *RequestHandlers {
	return &RequestHandlers{
		completions: completions,
		logger:      logger.With().Str("component", "request_handlers").Logger(),
	}
}

// Get handles GET /api/requests/{requestID}.
func (h *RequestHandlers) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	req, err := h.completions.Get(r.Context(), requestID)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, "Request not found")
		return
	case err != nil:
		h.logger.Error().Err(err).Str("requestId", requestID).Msg("Failed to load request")
		respondError(w, http.StatusInternalServerError, "Failed to load request")
		return
	}

	// Requests are scoped to their owner.
	if userID := domain.GetUserIDFromContext(r.Context()); req.UserID != userID {
		respondError(w, http.StatusNotFound, "Request not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"request": req,
	})
}

// Cancel handles POST /api/requests/{requestID}/cancel.
func (h *RequestHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	req, err := h.completions.Get(r.Context(), requestID)
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, "Request not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, "Failed to load request")
		return
	}

	if userID := domain.GetUserIDFromContext(r.Context()); req.UserID != userID {
		respondError(w, http.StatusNotFound, "Request not found")
		return
	}

	if err := h.completions.Cancel(r.Context(), requestID); err != nil {
		if errors.Is(err, domain.ErrTerminalState) {
			respondError(w, http.StatusConflict, "Request already in terminal state")
			return
		}
		h.logger.Error().Err(err).Str("requestId", requestID).Msg("Failed to cancel request")
		respondError(w, http.StatusInternalServerError, "Failed to cancel request")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
