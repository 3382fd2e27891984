// Package sync triggers background provider data work after a successful
// connection. Every call here is best-effort: errors are logged by callers
// and never allowed to fail an OAuth flow.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

// fitbitCollections are the subscription collections registered for a newly
// connected Fitbit account.
var fitbitCollections = []string{"activities", "body", "foods", "sleep"}

// HealthSync calls the health data service to backfill history and register
// Fitbit webhook subscriptions.
type HealthSync struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHealthSync creates a sync trigger for the health data service.
func NewHealthSync(baseURL, authToken string, logger zerolog.Logger) *HealthSync {
	return &HealthSync{
		baseURL:   baseURL,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "health_sync").Logger(),
	}
}

// NewHealthSyncWithHTTPClient creates a sync trigger with the given HTTP
// client, for tests.
func NewHealthSyncWithHTTPClient(baseURL, authToken string, httpClient *http.Client, logger zerolog.Logger) *HealthSync {
	return &HealthSync{
		baseURL:    baseURL,
		authToken:  authToken,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "health_sync").Logger(),
	}
}

// TriggerBackfill requests a bounded historical import for the user.
func (s *HealthSync) TriggerBackfill(ctx context.Context, userID, service string, days int) error {
	payload := map[string]interface{}{
		"action":       "backfill",
		"user_id":      userID,
		"service_name": service,
		"days":         days,
	}

	if err := s.post(ctx, "/api/health-sync", payload); err != nil {
		return fmt.Errorf("trigger backfill for %s: %w", service, err)
	}

	s.logger.Info().
		Str("userId", userID).
		Str("service", service).
		Int("days", days).
		Msg("Triggered historical backfill")
	return nil
}

// SubscribeFitbitCollections registers webhook subscriptions for the user's
// Fitbit collections.
func (s *HealthSync) SubscribeFitbitCollections(ctx context.Context, userID string) error {
	payload := map[string]interface{}{
		"action":      "subscribe",
		"user_id":     userID,
		"collections": fitbitCollections,
	}

	if err := s.post(ctx, "/api/fitbit/subscriptions", payload); err != nil {
		return fmt.Errorf("subscribe fitbit collections: %w", err)
	}

	s.logger.Info().
		Str("userId", userID).
		Strs("collections", fitbitCollections).
		Msg("Registered Fitbit webhook subscriptions")
	return nil
}

// ForwardFitbitEvents relays verified Fitbit notifications to the health data
// service for targeted resync.
func (s *HealthSync) ForwardFitbitEvents(ctx context.Context, events []domain.FitbitEvent) error {
	payload := map[string]interface{}{
		"provider": "fitbit",
		"events":   events,
	}
	if err := s.post(ctx, "/api/webhook-events", payload); err != nil {
		return fmt.Errorf("forward fitbit events: %w", err)
	}
	return nil
}

// ForwardOuraEvent relays a verified Oura notification to the health data
// service.
func (s *HealthSync) ForwardOuraEvent(ctx context.Context, event *domain.OuraEvent) error {
	payload := map[string]interface{}{
		"provider": "oura",
		"event":    event,
	}
	if err := s.post(ctx, "/api/webhook-events", payload); err != nil {
		return fmt.Errorf("forward oura event: %w", err)
	}
	return nil
}

func (s *HealthSync) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call health service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("health service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
