package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"
)

// reconnectSuffix is appended to the state for re-authorization attempts.
// Providers echo the state back verbatim, so the flag survives the round trip.
const reconnectSuffix = "&reconnect=true"

// Authorization is the result of initiating an OAuth flow.
type Authorization struct {
	AuthURL      string
	State        string
	CodeVerifier string
	UsePKCE      bool
}

// BuildAuthorization assembles the provider authorization URL with a fresh
// CSRF state and, when the provider requires it, an S256 PKCE challenge.
// The caller is responsible for persisting the state record (including the
// code verifier) until the callback.
func BuildAuthorization(cfg providers.Config, reconnect bool) (*Authorization, error) {
	if cfg.ClientID == "" {
		return nil, domain.ErrMisconfiguredClient
	}

	state, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	if reconnect {
		state += reconnectSuffix
	}

	params := url.Values{}
	params.Set("client_id", cfg.ClientID)
	params.Set("redirect_uri", cfg.RedirectURI)
	params.Set("response_type", "code")
	if len(cfg.Scopes) > 0 {
		params.Set("scope", strings.Join(cfg.Scopes, " "))
	}
	params.Set("state", state)

	for key, value := range cfg.AdditionalParams {
		params.Set(key, value)
	}

	auth := &Authorization{State: state, UsePKCE: cfg.UsePKCE}
	if cfg.UsePKCE {
		verifier, err := randomToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code verifier: %w", err)
		}
		auth.CodeVerifier = verifier
		params.Set("code_challenge", CodeChallengeS256(verifier))
		params.Set("code_challenge_method", "S256")
	}

	auth.AuthURL = cfg.AuthorizationURL + "?" + params.Encode()
	return auth, nil
}

// IsReconnectState reports whether a callback state carries the reconnect flag.
func IsReconnectState(state string) bool {
	return strings.HasSuffix(state, reconnectSuffix)
}

// CodeChallengeS256 derives the PKCE code challenge from a verifier:
// base64url, no padding, of the verifier's SHA-256 digest.
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// randomToken returns 32 bytes of entropy, base64url-encoded without padding.
func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
