package domain

import "time"

// IntegrationStatus describes the lifecycle state of a connected service.
type IntegrationStatus string

const (
	IntegrationActive   IntegrationStatus = "active"
	IntegrationPending  IntegrationStatus = "pending"
	IntegrationInactive IntegrationStatus = "inactive"
	IntegrationFailed   IntegrationStatus = "failed"
)

// Integration represents a per-user OAuth connection to a third-party service.
// Unique per (user, service); created on first successful token exchange and
// updated on every refresh or re-authorization.
type Integration struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	Service      string            `json:"service"`
	Status       IntegrationStatus `json:"status"`
	AccessToken  string            `json:"access_token,omitempty"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
	TokenType    string            `json:"token_type,omitempty"`
	Scope        string            `json:"scope,omitempty"`
	LastUsed     time.Time         `json:"last_used"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TokenExpired reports whether the access token is expired or will expire
// within the given margin. Integrations without an expiry never expire.
func (i *Integration) TokenExpired(margin time.Duration) bool {
	if i.ExpiresAt == nil {
		return false
	}
	return time.Now().Add(margin).After(*i.ExpiresAt)
}

// TokenSet is a normalized token payload returned by a provider's token
// endpoint. ExpiresAt is absolute seconds since epoch, computed from
// expires_in when the provider only returns a relative lifetime.
type TokenSet struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	ExpiresIn    int64   `json:"expires_in,omitempty"`
	ExpiresAt    float64 `json:"expires_at,omitempty"`
	TokenType    string  `json:"token_type,omitempty"`
	Scope        string  `json:"scope,omitempty"`
}

// ExpiryTime converts the absolute expiry to a time.Time, or nil when the
// provider issued a non-expiring token.
func (t *TokenSet) ExpiryTime() *time.Time {
	if t.ExpiresAt <= 0 {
		return nil
	}
	sec := int64(t.ExpiresAt)
	nsec := int64((t.ExpiresAt - float64(sec)) * 1e9)
	at := time.Unix(sec, nsec)
	return &at
}
