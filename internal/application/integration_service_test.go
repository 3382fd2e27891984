package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"

	"github.com/rs/zerolog"
)

func seedIntegration(repo *fakeIntegrationRepo, status domain.IntegrationStatus, expiresAt *time.Time) {
	_, _ = repo.Upsert(context.Background(), &domain.Integration{
		UserID:       "user-1",
		Service:      "fitbit",
		Status:       status,
		AccessToken:  "old-at",
		RefreshToken: "old-rt",
		ExpiresAt:    expiresAt,
	})
}

func newIntegrationFixture(exchanger *fakeExchanger) (*IntegrationService, *fakeIntegrationRepo) {
	repo := newFakeIntegrationRepo()
	registry := providers.NewRegistry("https://example.com")
	return NewIntegrationService(repo, registry, exchanger, nil, zerolog.Nop()), repo
}

func TestGetReturnsNilWhenAbsent(t *testing.T) {
	svc, _ := newIntegrationFixture(&fakeExchanger{})

	got, err := svc.Get(context.Background(), "user-1", "fitbit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for a missing integration")
	}
}

func TestGetRefreshesExpiredToken(t *testing.T) {
	future := time.Now().Add(time.Hour)
	exchanger := &fakeExchanger{refreshed: &domain.TokenSet{
		AccessToken:  "new-at",
		RefreshToken: "new-rt",
		ExpiresAt:    float64(future.Unix()),
	}}
	svc, repo := newIntegrationFixture(exchanger)

	past := time.Now().Add(-time.Minute)
	seedIntegration(repo, domain.IntegrationActive, &past)

	got, err := svc.Get(context.Background(), "user-1", "fitbit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if exchanger.gotRefresh != "old-rt" {
		t.Errorf("refreshed with token %q", exchanger.gotRefresh)
	}
	if got.AccessToken != "new-at" || got.RefreshToken != "new-rt" {
		t.Fatalf("tokens %+v", got)
	}

	stored, _ := repo.Get(context.Background(), "user-1", "fitbit")
	if stored.AccessToken != "new-at" {
		t.Fatal("refreshed token was not persisted")
	}
}

func TestGetSkipsRefreshForValidToken(t *testing.T) {
	exchanger := &fakeExchanger{refreshErr: errors.New("should not be called")}
	svc, repo := newIntegrationFixture(exchanger)

	future := time.Now().Add(time.Hour)
	seedIntegration(repo, domain.IntegrationActive, &future)

	got, err := svc.Get(context.Background(), "user-1", "fitbit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "old-at" {
		t.Fatalf("token %q", got.AccessToken)
	}
}

func TestRefreshFailureMarksFailedNotDeleted(t *testing.T) {
	exchanger := &fakeExchanger{refreshErr: errors.New("invalid_grant")}
	svc, repo := newIntegrationFixture(exchanger)

	past := time.Now().Add(-time.Minute)
	seedIntegration(repo, domain.IntegrationActive, &past)

	_, err := svc.Get(context.Background(), "user-1", "fitbit")
	if !errors.Is(err, domain.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}

	stored, _ := repo.Get(context.Background(), "user-1", "fitbit")
	if stored == nil {
		t.Fatal("failed refresh must not delete the integration")
	}
	if stored.Status != domain.IntegrationFailed {
		t.Fatalf("status = %q, want failed", stored.Status)
	}
	if stored.RefreshToken != "old-rt" {
		t.Fatal("stored credential should survive for re-authorization")
	}
}

func TestRefreshWithoutRefreshToken(t *testing.T) {
	svc, repo := newIntegrationFixture(&fakeExchanger{})

	past := time.Now().Add(-time.Minute)
	_, _ = repo.Upsert(context.Background(), &domain.Integration{
		UserID:      "user-1",
		Service:     "fitbit",
		Status:      domain.IntegrationActive,
		AccessToken: "old-at",
		ExpiresAt:   &past,
	})

	_, err := svc.Get(context.Background(), "user-1", "fitbit")
	if !errors.Is(err, domain.ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
}

func TestDisconnectMarksInactive(t *testing.T) {
	svc, repo := newIntegrationFixture(&fakeExchanger{})
	seedIntegration(repo, domain.IntegrationActive, nil)

	if err := svc.Disconnect(context.Background(), "user-1", "fitbit"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	stored, _ := repo.Get(context.Background(), "user-1", "fitbit")
	if stored.Status != domain.IntegrationInactive {
		t.Fatalf("status = %q", stored.Status)
	}
	if stored.RefreshToken != "old-rt" {
		t.Fatal("disconnect should keep the stored credential")
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	svc, repo := newIntegrationFixture(&fakeExchanger{})
	seedIntegration(repo, domain.IntegrationActive, nil)

	deleted, err := svc.Delete(context.Background(), "user-1", "fitbit")
	if err != nil || !deleted {
		t.Fatalf("delete: %v, %v", deleted, err)
	}

	stored, _ := repo.Get(context.Background(), "user-1", "fitbit")
	if stored != nil {
		t.Fatal("row still present after delete")
	}

	deleted, err = svc.Delete(context.Background(), "user-1", "fitbit")
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if deleted {
		t.Fatal("second delete should report no row")
	}
}

func TestServiceNameValidation(t *testing.T) {
	svc, _ := newIntegrationFixture(&fakeExchanger{})

	if _, err := svc.Get(context.Background(), "user-1", "unknown"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("get: %v", err)
	}
	if err := svc.Disconnect(context.Background(), "user-1", "unknown"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("disconnect: %v", err)
	}
	if _, err := svc.Delete(context.Background(), "user-1", "unknown"); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("delete: %v", err)
	}
}
