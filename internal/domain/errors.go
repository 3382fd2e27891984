package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigNotFound means the service name is not in the provider registry.
	ErrConfigNotFound = errors.New("oauth configuration not found for service")

	// ErrMisconfiguredClient means the provider entry exists but has no client id.
	ErrMisconfiguredClient = errors.New("client id not configured for service")

	// ErrSignatureInvalid is returned for any webhook authentication failure.
	// Surfaced as 401 without detail beyond "invalid signature".
	ErrSignatureInvalid = errors.New("invalid signature")

	// ErrReplayRejected means an Oura delivery arrived outside the replay window.
	ErrReplayRejected = errors.New("timestamp too old")

	// ErrMalformedPayload means a webhook body failed to parse as JSON.
	ErrMalformedPayload = errors.New("invalid JSON body")

	// ErrStateNotFound means an OAuth state was unknown, expired or already consumed.
	ErrStateNotFound = errors.New("oauth state not found or already used")

	// ErrRefreshFailed means a token refresh failed irrecoverably; the
	// integration is marked failed but kept for re-authorization.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrRequestNotFound means no completion request exists for the given id.
	ErrRequestNotFound = errors.New("request not found")

	// ErrTerminalState means a completion request was asked to leave a
	// terminal status.
	ErrTerminalState = errors.New("request already in terminal state")
)

// TokenExchangeError carries the provider's HTTP status and response body when
// a token endpoint returns non-2xx. Never silently swallowed.
type TokenExchangeError struct {
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed: status %d: %s", e.StatusCode, e.Body)
}

// IsTokenExchangeError reports whether err wraps a TokenExchangeError.
func IsTokenExchangeError(err error) bool {
	var te *TokenExchangeError
	return errors.As(err, &te)
}
