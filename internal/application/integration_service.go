package application

import (
	"context"
	"fmt"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/metrics"
	"jarvis-integrations-layer/internal/infrastructure/providers"
	"jarvis-integrations-layer/internal/ports"

	"github.com/rs/zerolog"
)

// refreshMargin refreshes tokens slightly before their actual expiry so a
// caller never receives a token about to die mid-request.
const refreshMargin = 60 * time.Second

// IntegrationService manages stored integrations: listing, lookup with
// transparent token refresh, disconnect and deletion.
type IntegrationService struct {
	repo      ports.IntegrationRepository
	registry  *providers.Registry
	exchanger TokenExchanger
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewIntegrationService creates the integration application service.
func NewIntegrationService(
	repo ports.IntegrationRepository,
	registry *providers.Registry,
	exchanger TokenExchanger,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *IntegrationService {
	return &IntegrationService{
		repo:      repo,
		registry:  registry,
		exchanger: exchanger,
		metrics:   m,
		logger:    logger.With().Str("component", "integration_service").Logger(),
	}
}

// List returns all of a user's integrations.
func (s *IntegrationService) List(ctx context.Context, userID string) ([]*domain.Integration, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns the integration for a user and service with a usable access
// token, refreshing it first when expired. Returns nil when no integration
// exists.
func (s *IntegrationService) Get(ctx context.Context, userID, service string) (*domain.Integration, error) {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return nil, err
	}

	integration, err := s.repo.Get(ctx, userID, cfg.Service)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, nil
	}

	if integration.Status == domain.IntegrationActive && integration.TokenExpired(refreshMargin) {
		refreshed, err := s.refresh(ctx, cfg, integration)
		if err != nil {
			return nil, err
		}
		integration = refreshed
	}

	return integration, nil
}

// Refresh forces a token refresh for an integration regardless of expiry.
func (s *IntegrationService) Refresh(ctx context.Context, userID, service string) (*domain.Integration, error) {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return nil, err
	}

	integration, err := s.repo.Get(ctx, userID, cfg.Service)
	if err != nil {
		return nil, err
	}
	if integration == nil {
		return nil, domain.ErrRefreshFailed
	}

	return s.refresh(ctx, cfg, integration)
}

// refresh trades the refresh token for new credentials and persists them. On
// irrecoverable failure the integration is marked failed but kept so the user
// can re-authorize; it is never deleted here.
func (s *IntegrationService) refresh(ctx context.Context, cfg providers.Config, integration *domain.Integration) (*domain.Integration, error) {
	if integration.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token stored for %s", domain.ErrRefreshFailed, cfg.Service)
	}

	tokens, err := s.exchanger.Refresh(ctx, cfg, integration.RefreshToken)
	if err != nil {
		if s.metrics != nil {
			s.metrics.TokenRefreshes.WithLabelValues(cfg.Service, "error").Inc()
		}
		s.logger.Warn().Err(err).
			Str("userId", integration.UserID).
			Str("service", cfg.Service).
			Msg("Token refresh failed, marking integration failed")

		if markErr := s.repo.UpdateStatus(ctx, integration.UserID, cfg.Service, domain.IntegrationFailed); markErr != nil {
			s.logger.Error().Err(markErr).
				Str("userId", integration.UserID).
				Str("service", cfg.Service).
				Msg("Failed to mark integration as failed")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	if s.metrics != nil {
		s.metrics.TokenRefreshes.WithLabelValues(cfg.Service, "success").Inc()
	}

	integration.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		integration.RefreshToken = tokens.RefreshToken
	}
	integration.ExpiresAt = tokens.ExpiryTime()
	if tokens.TokenType != "" {
		integration.TokenType = tokens.TokenType
	}
	if tokens.Scope != "" {
		integration.Scope = tokens.Scope
	}
	integration.Status = domain.IntegrationActive
	integration.LastUsed = time.Now()

	stored, err := s.repo.Upsert(ctx, integration)
	if err != nil {
		return nil, fmt.Errorf("store refreshed tokens: %w", err)
	}

	s.logger.Info().
		Str("userId", integration.UserID).
		Str("service", cfg.Service).
		Msg("Access token refreshed")

	return stored, nil
}

// Disconnect marks an integration inactive without deleting the stored
// credential, so a reconnect can reuse the row.
func (s *IntegrationService) Disconnect(ctx context.Context, userID, service string) error {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, userID, cfg.Service, domain.IntegrationInactive)
}

// Delete hard-deletes the (user, service) credential. Reports whether a row
// existed.
func (s *IntegrationService) Delete(ctx context.Context, userID, service string) (bool, error) {
	cfg, err := s.registry.Get(service)
	if err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteByUserAndService(ctx, userID, cfg.Service)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info().
			Str("userId", userID).
			Str("service", cfg.Service).
			Msg("Integration deleted")
	}
	return deleted, nil
}
