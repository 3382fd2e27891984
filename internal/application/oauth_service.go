package application

import (
	"context"
	"fmt"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/oauth"
	"jarvis-integrations-layer/internal/infrastructure/providers"
	"jarvis-integrations-layer/internal/ports"

	"github.com/rs/zerolog"
)

// TokenExchanger abstracts the token endpoint client for testing.
type TokenExchanger interface {
	Exchange(ctx context.Context, cfg providers.Config, code, codeVerifier string) (*domain.TokenSet, error)
	Refresh(ctx context.Context, cfg providers.Config, refreshToken string) (*domain.TokenSet, error)
}

// InitiateResult is returned from a successful flow initiation. The PKCE code
// verifier is deliberately absent: it stays server-side in the state store.
type InitiateResult struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
	UsePKCE bool   `json:"use_pkce"`
}

// ExchangeResult is returned from a successful code exchange.
type ExchangeResult struct {
	Integration *domain.Integration
	Reconnect   bool
}

// OAuthService runs the two server-side halves of the authorization code
// flow: initiation (state + PKCE generation) and code exchange (token trade
// plus credential persistence).
type OAuthService struct {
	registry     *providers.Registry
	states       ports.StateStore
	exchanger    TokenExchanger
	integrations ports.IntegrationRepository
	syncTrigger  ports.SyncTrigger
	metrics      *metrics.Metrics
	backfillDays int
	logger       zerolog.Logger
}

// NewOAuthService creates the OAuth application service. syncTrigger may be
// nil when no health data service is configured.
func NewOAuthService(
	registry *providers.Registry,
	states ports.StateStore,
	exchanger TokenExchanger,
	integrations ports.IntegrationRepository,
	syncTrigger ports.SyncTrigger,
	m *metrics.Metrics,
	backfillDays int,
	logger zerolog.Logger,
) *OAuthService {
	return &OAuthService{
		registry:     registry,
		states:       states,
		exchanger:    exchanger,
		integrations: integrations,
		syncTrigger:  syncTrigger,
		metrics:      m,
		backfillDays: backfillDays,
		logger:       logger.With().Str("component", "oauth_service").Logger(),
	}
}

// Initiate starts an authorization flow for a service. The returned state is
// persisted server-side together with the PKCE code verifier so the exchange
// leg can complete it.
func (s *OAuthService) Initiate(ctx context.Context, service string, reconnect bool) (*InitiateResult, error) {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return nil, err
	}

	auth, err := oauth.BuildAuthorization(cfg, reconnect)
	if err != nil {
		return nil, err
	}

	record := &ports.AuthState{
		State:        auth.State,
		Service:      cfg.Service,
		CodeVerifier: auth.CodeVerifier,
		Reconnect:    reconnect,
		CreatedAt:    time.Now(),
	}
	if err := s.states.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("persist auth state: %w", err)
	}

	s.logger.Info().
		Str("service", cfg.Service).
		Bool("reconnect", reconnect).
		Bool("pkce", auth.UsePKCE).
		Msg("OAuth flow initiated")

	return &InitiateResult{AuthURL: auth.AuthURL, State: auth.State, UsePKCE: auth.UsePKCE}, nil
}

// Exchange completes the flow: consumes the state record, trades the code for
// tokens and stores the credential as an active integration. Post-connect
// data sync runs in the background and never fails the exchange.
func (s *OAuthService) Exchange(ctx context.Context, userID, service, code, state string) (*ExchangeResult, error) {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return nil, err
	}

	record, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("consume auth state: %w", err)
	}
	if record == nil || record.Service != cfg.Service {
		return nil, domain.ErrStateNotFound
	}

	tokens, err := s.exchanger.Exchange(ctx, cfg, code, record.CodeVerifier)
	if err != nil {
		if s.metrics != nil {
			s.metrics.TokenExchanges.WithLabelValues(cfg.Service, "error").Inc()
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TokenExchanges.WithLabelValues(cfg.Service, "success").Inc()
	}

	now := time.Now()
	integration, err := s.integrations.Upsert(ctx, &domain.Integration{
		UserID:       userID,
		Service:      cfg.Service,
		Status:       domain.IntegrationActive,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiryTime(),
		TokenType:    tokens.TokenType,
		Scope:        tokens.Scope,
		LastUsed:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("store integration: %w", err)
	}

	reconnect := record.Reconnect || oauth.IsReconnectState(state)

	s.logger.Info().
		Str("userId", userID).
		Str("service", cfg.Service).
		Bool("reconnect", reconnect).
		Msg("OAuth exchange completed, integration active")

	s.startPostConnectSync(userID, cfg.Service)

	return &ExchangeResult{Integration: integration, Reconnect: reconnect}, nil
}

// startPostConnectSync kicks off historical backfill and, for Fitbit, webhook
// subscription registration. Failures are logged and swallowed.
func (s *OAuthService) startPostConnectSync(userID, service string) {
	if s.syncTrigger == nil {
		return
	}
	if service != "fitbit" && service != "oura" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		if err := s.syncTrigger.TriggerBackfill(ctx, userID, service, s.backfillDays); err != nil {
			s.logger.Warn().Err(err).
				Str("userId", userID).
				Str("service", service).
				Msg("Historical backfill failed")
		}

		if service == "fitbit" {
			if err := s.syncTrigger.SubscribeFitbitCollections(ctx, userID); err != nil {
				s.logger.Warn().Err(err).
					Str("userId", userID).
					Msg("Fitbit subscription setup failed")
			}
		}
	}()
}
