package oauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"

	"github.com/rs/zerolog"
)

// Exchanger trades authorization codes and refresh tokens for token sets
// against provider token endpoints. Stateless; the PKCE code verifier must be
// supplied by the caller since it was generated in an earlier request cycle.
type Exchanger struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewExchanger creates a token exchanger.
func NewExchanger(logger zerolog.Logger) *Exchanger {
	return &Exchanger{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// NewExchangerWithClient creates a token exchanger with a custom HTTP client.
func NewExchangerWithClient(client *http.Client, logger zerolog.Logger) *Exchanger {
	return &Exchanger{httpClient: client, logger: logger}
}

// Exchange trades an authorization code for a normalized token set.
// codeVerifier is included when the original authorization used PKCE; pass ""
// otherwise.
func (e *Exchanger) Exchange(ctx context.Context, cfg providers.Config, code, codeVerifier string) (*domain.TokenSet, error) {
	body := url.Values{}
	body.Set("grant_type", "authorization_code")
	body.Set("client_id", cfg.ClientID)
	body.Set("code", code)
	body.Set("redirect_uri", cfg.RedirectURI)
	if codeVerifier != "" {
		body.Set("code_verifier", codeVerifier)
	}
	return e.post(ctx, cfg, body)
}

// Refresh trades a refresh token for a new token set using
// grant_type=refresh_token.
func (e *Exchanger) Refresh(ctx context.Context, cfg providers.Config, refreshToken string) (*domain.TokenSet, error) {
	body := url.Values{}
	body.Set("grant_type", "refresh_token")
	body.Set("client_id", cfg.ClientID)
	body.Set("refresh_token", refreshToken)
	return e.post(ctx, cfg, body)
}

func (e *Exchanger) post(ctx context.Context, cfg providers.Config, body url.Values) (*domain.TokenSet, error) {
	// The client secret rides in the body unless the provider wants it in a
	// Basic authorization header instead.
	if cfg.ClientSecret != "" && !cfg.UseBasicAuth {
		body.Set("client_secret", cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if cfg.UseBasicAuth && cfg.ClientSecret != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.ClientID + ":" + cfg.ClientSecret))
		req.Header.Set("Authorization", "Basic "+credentials)
	}
	for key, value := range cfg.CustomHeaders {
		req.Header.Set(key, value)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(resp.Body)
		e.logger.Error().
			Str("service", cfg.Service).
			Int("status", resp.StatusCode).
			Msg("Token exchange failed")
		return nil, &domain.TokenExchangeError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var tokens domain.TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	// Normalize: a relative expires_in without an absolute expires_at becomes
	// seconds since epoch.
	if tokens.ExpiresIn > 0 && tokens.ExpiresAt == 0 {
		tokens.ExpiresAt = float64(time.Now().UnixNano())/1e9 + float64(tokens.ExpiresIn)
	}

	return &tokens, nil
}
