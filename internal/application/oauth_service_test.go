package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"jarvis-integrations-layer/internal/domain"
	"jarvis-integrations-layer/internal/infrastructure/providers"
	"jarvis-integrations-layer/internal/ports"

	"github.com/rs/zerolog"
)

type recordingSyncTrigger struct {
	mu          sync.Mutex
	backfills   []string
	subscribers []string
	done        chan struct{}
}

func (r *recordingSyncTrigger) TriggerBackfill(_ context.Context, userID, service string, _ int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backfills = append(r.backfills, userID+"/"+service)
	return nil
}

func (r *recordingSyncTrigger) SubscribeFitbitCollections(_ context.Context, userID string) error {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, userID)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
	return nil
}

func newOAuthFixture(t *testing.T, exchanger *fakeExchanger, trigger *recordingSyncTrigger) (*OAuthService, *fakeStateStore, *fakeIntegrationRepo) {
	t.Helper()
	t.Setenv("FITBIT_CLIENT_ID", "fitbit-id")
	t.Setenv("FITBIT_CLIENT_SECRET", "fitbit-secret")
	t.Setenv("MYCHART_CLIENT_ID", "mychart-id")

	states := newFakeStateStore()
	repo := newFakeIntegrationRepo()
	registry := providers.NewRegistry("https://example.com")

	var syncTrigger ports.SyncTrigger
	if trigger != nil {
		syncTrigger = trigger
	}
	svc := NewOAuthService(registry, states, exchanger, repo, syncTrigger, nil, 7, zerolog.Nop())
	return svc, states, repo
}

func TestInitiatePersistsState(t *testing.T) {
	svc, states, _ := newOAuthFixture(t, &fakeExchanger{}, nil)

	result, err := svc.Initiate(context.Background(), "fitbit", false)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if result.AuthURL == "" || result.State == "" {
		t.Fatalf("incomplete result %+v", result)
	}

	record, _ := states.Consume(context.Background(), result.State)
	if record == nil {
		t.Fatal("state was not persisted")
	}
	if record.Service != "fitbit" {
		t.Errorf("record service %q", record.Service)
	}
	if record.CodeVerifier != "" {
		t.Error("fitbit does not use PKCE; no verifier should be stored")
	}
}

func TestInitiatePKCEStoresVerifier(t *testing.T) {
	svc, states, _ := newOAuthFixture(t, &fakeExchanger{}, nil)

	result, err := svc.Initiate(context.Background(), "mychart", false)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	record, _ := states.Consume(context.Background(), result.State)
	if record == nil || record.CodeVerifier == "" {
		t.Fatal("PKCE verifier missing from stored state")
	}

	parsed, _ := url.Parse(result.AuthURL)
	if parsed.Query().Get("code_challenge") == "" {
		t.Fatal("auth URL missing code challenge")
	}
	if strings.Contains(result.AuthURL, record.CodeVerifier) {
		t.Fatal("raw verifier must never appear in the auth URL")
	}
}

func TestInitiateUnknownService(t *testing.T) {
	svc, _, _ := newOAuthFixture(t, &fakeExchanger{}, nil)

	if _, err := svc.Initiate(context.Background(), "unknown", false); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestExchangeStoresActiveIntegration(t *testing.T) {
	exchanger := &fakeExchanger{tokens: &domain.TokenSet{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    float64(time.Now().Add(time.Hour).Unix()),
		Scope:        "activity sleep",
	}}
	svc, _, repo := newOAuthFixture(t, exchanger, nil)
	ctx := context.Background()

	initiated, err := svc.Initiate(ctx, "fitbit", false)
	if err != nil {
		t.Fatal(err)
	}

	result, err := svc.Exchange(ctx, "user-1", "fitbit", "the-code", initiated.State)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	if exchanger.gotCode != "the-code" {
		t.Errorf("code %q", exchanger.gotCode)
	}
	if result.Reconnect {
		t.Error("fresh connection reported as reconnect")
	}
	if result.Integration.Status != domain.IntegrationActive {
		t.Errorf("status %q", result.Integration.Status)
	}

	stored, _ := repo.Get(ctx, "user-1", "fitbit")
	if stored == nil || stored.AccessToken != "at" || stored.RefreshToken != "rt" {
		t.Fatalf("stored %+v", stored)
	}
	if stored.ExpiresAt == nil {
		t.Fatal("expiry not persisted")
	}
}

func TestExchangeRejectsUnknownState(t *testing.T) {
	svc, _, _ := newOAuthFixture(t, &fakeExchanger{tokens: &domain.TokenSet{AccessToken: "at"}}, nil)

	_, err := svc.Exchange(context.Background(), "user-1", "fitbit", "code", "never-issued")
	if !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestExchangeStateIsSingleUse(t *testing.T) {
	exchanger := &fakeExchanger{tokens: &domain.TokenSet{AccessToken: "at"}}
	svc, _, _ := newOAuthFixture(t, exchanger, nil)
	ctx := context.Background()

	initiated, _ := svc.Initiate(ctx, "fitbit", false)
	if _, err := svc.Exchange(ctx, "user-1", "fitbit", "code", initiated.State); err != nil {
		t.Fatalf("first exchange: %v", err)
	}

	if _, err := svc.Exchange(ctx, "user-1", "fitbit", "code", initiated.State); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("second exchange should fail with ErrStateNotFound, got %v", err)
	}
}

func TestExchangeRejectsServiceMismatch(t *testing.T) {
	exchanger := &fakeExchanger{tokens: &domain.TokenSet{AccessToken: "at"}}
	svc, _, _ := newOAuthFixture(t, exchanger, nil)
	ctx := context.Background()

	initiated, _ := svc.Initiate(ctx, "fitbit", false)

	// A state issued for fitbit must not complete an oura exchange.
	if _, err := svc.Exchange(ctx, "user-1", "oura", "code", initiated.State); !errors.Is(err, domain.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestExchangeReconnectFlag(t *testing.T) {
	exchanger := &fakeExchanger{tokens: &domain.TokenSet{AccessToken: "at"}}
	svc, _, _ := newOAuthFixture(t, exchanger, nil)
	ctx := context.Background()

	initiated, _ := svc.Initiate(ctx, "fitbit", true)
	if !strings.HasSuffix(initiated.State, "&reconnect=true") {
		t.Fatalf("state %q missing reconnect marker", initiated.State)
	}

	result, err := svc.Exchange(ctx, "user-1", "fitbit", "code", initiated.State)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Reconnect {
		t.Fatal("reconnect flag lost through the round trip")
	}
}

func TestExchangeTriggersBackgroundSync(t *testing.T) {
	trigger := &recordingSyncTrigger{done: make(chan struct{})}
	exchanger := &fakeExchanger{tokens: &domain.TokenSet{AccessToken: "at"}}
	svc, _, _ := newOAuthFixture(t, exchanger, trigger)
	ctx := context.Background()

	initiated, _ := svc.Initiate(ctx, "fitbit", false)
	if _, err := svc.Exchange(ctx, "user-1", "fitbit", "code", initiated.State); err != nil {
		t.Fatal(err)
	}

	select {
	case <-trigger.done:
	case <-time.After(2 * time.Second):
		t.Fatal("background sync never ran")
	}

	trigger.mu.Lock()
	defer trigger.mu.Unlock()
	if len(trigger.backfills) != 1 || trigger.backfills[0] != "user-1/fitbit" {
		t.Fatalf("backfills %v", trigger.backfills)
	}
	if len(trigger.subscribers) != 1 || trigger.subscribers[0] != "user-1" {
		t.Fatalf("subscribers %v", trigger.subscribers)
	}
}

func TestExchangePropagatesProviderError(t *testing.T) {
	exchanger := &fakeExchanger{err: &domain.TokenExchangeError{StatusCode: 400, Body: "invalid_grant"}}
	svc, _, repo := newOAuthFixture(t, exchanger, nil)
	ctx := context.Background()

	initiated, _ := svc.Initiate(ctx, "fitbit", false)
	_, err := svc.Exchange(ctx, "user-1", "fitbit", "bad", initiated.State)
	if !domain.IsTokenExchangeError(err) {
		t.Fatalf("expected TokenExchangeError, got %v", err)
	}

	stored, _ := repo.Get(ctx, "user-1", "fitbit")
	if stored != nil {
		t.Fatal("no integration should be stored after a failed exchange")
	}
}
