package application

import (
	"context"
	"testing"
	"time"

	"jarvis-integrations-layer/internal/domain"

	"github.com/rs/zerolog"
)

func TestPollerStopsAtTerminalStatus(t *testing.T) {
	svc, _ := newCompletionFixture(&fakeAssistant{})
	ctx := context.Background()

	req, _ := svc.Create(ctx, "u", "fitbit", "msg")

	poller := NewPollerWithCadence(svc, time.Millisecond, 5*time.Millisecond, 50, zerolog.Nop())

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = svc.MarkCompleted(ctx, req.RequestID, nil)
	}()

	result, err := poller.Observe(ctx, req.RequestID)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Status != string(domain.RequestCompleted) {
		t.Fatalf("status = %q, want completed", result.Status)
	}
	if result.Request == nil || result.Request.RequestID != req.RequestID {
		t.Fatalf("result request %+v", result.Request)
	}
}

func TestPollerTimesOut(t *testing.T) {
	svc, _ := newCompletionFixture(&fakeAssistant{})
	ctx := context.Background()

	req, _ := svc.Create(ctx, "u", "fitbit", "msg")

	poller := NewPollerWithCadence(svc, time.Millisecond, time.Millisecond, 3, zerolog.Nop())

	result, err := poller.Observe(ctx, req.RequestID)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Status != StatusTimedOut {
		t.Fatalf("status = %q, want %q", result.Status, StatusTimedOut)
	}
	if result.Request == nil || result.Request.Status != domain.RequestPending {
		t.Fatalf("stored request should keep its own status: %+v", result.Request)
	}
}

func TestPollerToleratesLateRequestCreation(t *testing.T) {
	svc, _ := newCompletionFixture(&fakeAssistant{})
	ctx := context.Background()

	requestID := "integration-completion-late-abc"
	poller := NewPollerWithCadence(svc, time.Millisecond, 5*time.Millisecond, 100, zerolog.Nop())

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = svc.requests.Create(ctx, &domain.CompletionRequest{
			RequestID: requestID,
			UserID:    "u",
			Type:      domain.RequestTypeIntegrationCompletion,
			Status:    domain.RequestCompleted,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
	}()

	result, err := poller.Observe(ctx, requestID)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if result.Status != string(domain.RequestCompleted) {
		t.Fatalf("status = %q", result.Status)
	}
}

func TestPollerHonorsContextCancellation(t *testing.T) {
	svc, _ := newCompletionFixture(&fakeAssistant{})

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPollerWithCadence(svc, time.Hour, time.Hour, 10, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := poller.Observe(ctx, "whatever")
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a context error")
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not react to cancellation")
	}
}
