package ports

import (
	"context"
	"time"
)

// AuthState is the server-side record of a pending authorization attempt.
// Keyed by the opaque state parameter; single-use with a short TTL so the
// PKCE code verifier survives the redirect round trip.
type AuthState struct {
	State        string    `json:"state"`
	Service      string    `json:"service"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	Reconnect    bool      `json:"reconnect"`
	CreatedAt    time.Time `json:"created_at"`
}

// StateStore persists pending OAuth authorization state across the redirect
// round trip. States expire after a short TTL and are consumed exactly once.
type StateStore interface {
	// Save stores the state record with the store's TTL.
	Save(ctx context.Context, state *AuthState) error

	// Consume atomically retrieves and deletes the record, enforcing
	// single-use semantics. Returns nil when absent or expired.
	Consume(ctx context.Context, state string) (*AuthState, error)
}

// SyncTrigger starts background provider data work after a successful
// connection. Both calls are fire-and-forget from the caller's perspective:
// failures are logged by the implementation and never returned upstream.
type SyncTrigger interface {
	// TriggerBackfill requests a bounded historical import for a user.
	TriggerBackfill(ctx context.Context, userID, service string, days int) error

	// SubscribeFitbitCollections registers webhook subscriptions for the
	// user's Fitbit collections.
	SubscribeFitbitCollections(ctx context.Context, userID string) error
}

// AssistantClient calls the remote chat backend that finishes an integration
// setup conversationally.
type AssistantClient interface {
	// CompleteIntegration asks the assistant to finish setup for a service.
	// Blocks until the backend answers or fails.
	CompleteIntegration(ctx context.Context, userID, service, requestID, message string) (*AssistantReply, error)
}

// AssistantReply is the backend's answer to a completion message.
type AssistantReply struct {
	Response       string `json:"response"`
	Timestamp      int64  `json:"timestamp"`
	TotalTurns     int    `json:"total_turns"`
	ConversationID string `json:"conversation_id"`
}
