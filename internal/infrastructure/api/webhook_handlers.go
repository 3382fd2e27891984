package api

import (
	"errors"
	"io"
	"net/http"

	"jarvis-integrations-layer/internal/application"
	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/webhook"

	"github.com/rs/zerolog"
)

// maxWebhookBody caps webhook request bodies.
const maxWebhookBody = 1 << 20

// WebhookHandlers terminates provider webhook traffic. Signature checks run
// over the raw body before any parsing, and dispatch happens after the
// provider has been answered.
type WebhookHandlers struct {
	fitbit     *webhook.FitbitVerifier
	oura       *webhook.OuraVerifier
	dispatcher *application.WebhookDispatcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewWebhookHandlers creates the webhook HTTP handlers.
func NewWebhookHandlers(
	fitbit *webhook.FitbitVerifier,
	oura *webhook.OuraVerifier,
	dispatcher *application.WebhookDispatcher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *WebhookHandlers {
	return &WebhookHandlers{
		fitbit:     fitbit,
		oura:       oura,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger.With().Str("component", "webhook_handlers").Logger(),
	}
}

func (h *WebhookHandlers) reject(provider, reason string) {
	if h.metrics != nil {
		h.metrics.WebhooksRejected.WithLabelValues(provider, reason).Inc()
	}
}

// FitbitVerify handles GET /webhooks/fitbit, Fitbit's subscriber endpoint
// verification handshake.
func (h *WebhookHandlers) FitbitVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if h.fitbit.VerifyEndpoint(q.Get("mode"), q.Get("verify")) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// FitbitReceive handles POST /webhooks/fitbit.
func (h *WebhookHandlers) FitbitReceive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.reject("fitbit", "read_error")
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.fitbit.VerifySignature(body, r.Header.Get(webhook.FitbitSignatureHeader)); err != nil {
		h.reject("fitbit", "bad_signature")
		h.logger.Warn().Msg("Rejected Fitbit webhook with invalid signature")
		respondError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	events, err := h.fitbit.ParseEvents(body)
	if err != nil {
		h.reject("fitbit", "malformed_payload")
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	// Fitbit expects a fast 204; processing continues after the response.
	w.WriteHeader(http.StatusNoContent)

	ctx := r.Context()
	seen := make(map[string]bool)
	for _, e := range events {
		if seen[e.CollectionType] {
			continue
		}
		seen[e.CollectionType] = true
		h.dispatcher.Dispatch(ctx, &domain.WebhookEvent{
			Provider: "fitbit",
			Topic:    e.CollectionType,
			OwnerID:  e.OwnerID,
			Payload:  body,
			Verified: true,
		})
	}
}

// OuraVerify handles GET /webhooks/oura, Oura's endpoint registration
// handshake. The submitted token is echoed back only when it matches the
// configured verification token.
func (h *WebhookHandlers) OuraVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("verification_token")
	if !h.oura.VerifyEndpoint(token) {
		h.reject("oura", "bad_verification_token")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(token))
}

// OuraReceive handles POST /webhooks/oura.
func (h *WebhookHandlers) OuraReceive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.reject("oura", "read_error")
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get(webhook.OuraSignatureHeader)
	timestamp := r.Header.Get(webhook.OuraTimestampHeader)

	if err := h.oura.VerifySignature(body, signature, timestamp); err != nil {
		if errors.Is(err, domain.ErrReplayRejected) {
			h.reject("oura", "replay")
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Timestamp too old"})
			return
		}
		h.reject("oura", "bad_signature")
		h.logger.Warn().Msg("Rejected Oura webhook with invalid signature")
		respondError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	event, err := h.oura.ParseEvent(body)
	if err != nil {
		h.reject("oura", "malformed_payload")
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	w.WriteHeader(http.StatusNoContent)

	h.dispatcher.Dispatch(r.Context(), &domain.WebhookEvent{
		Provider: "oura",
		Topic:    event.EventType + "/" + event.Object,
		OwnerID:  event.UserID,
		Payload:  body,
		Verified: true,
	})
}
