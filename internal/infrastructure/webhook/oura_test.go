package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"jarvis-integrations-layer/internal/domain"
)

func ouraSign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func frozenOuraVerifier(secret string, at time.Time) *OuraVerifier {
	v := NewOuraVerifier(secret, "token")
	v.now = func() time.Time { return at }
	return v
}

func TestOuraSignatureValid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := frozenOuraVerifier("secret", now)
	body := []byte(`{"event_type":"create","object":"sleep","user_id":"u1","data_id":"d1"}`)
	ts := strconv.FormatInt(now.Unix(), 10)

	if err := v.VerifySignature(body, ouraSign("secret", ts, body), ts); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestOuraSignatureTamperedBody(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := frozenOuraVerifier("secret", now)
	body := []byte(`{"event_type":"create","object":"sleep"}`)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := ouraSign("secret", ts, body)

	tampered := []byte(`{"event_type":"delete","object":"sleep"}`)
	if err := v.VerifySignature(tampered, sig, ts); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestOuraReplayWindow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := frozenOuraVerifier("secret", now)
	body := []byte(`{"event_type":"create","object":"sleep"}`)

	// 400 seconds old: outside the 300s window even with a valid signature.
	old := strconv.FormatInt(now.Add(-400*time.Second).Unix(), 10)
	if err := v.VerifySignature(body, ouraSign("secret", old, body), old); !errors.Is(err, domain.ErrReplayRejected) {
		t.Fatalf("expected ErrReplayRejected, got %v", err)
	}

	// 200 seconds old: inside the window.
	recent := strconv.FormatInt(now.Add(-200*time.Second).Unix(), 10)
	if err := v.VerifySignature(body, ouraSign("secret", recent, body), recent); err != nil {
		t.Fatalf("in-window delivery rejected: %v", err)
	}

	// Far future timestamps are rejected too.
	future := strconv.FormatInt(now.Add(400*time.Second).Unix(), 10)
	if err := v.VerifySignature(body, ouraSign("secret", future, body), future); !errors.Is(err, domain.ErrReplayRejected) {
		t.Fatalf("expected ErrReplayRejected for future timestamp, got %v", err)
	}
}

func TestOuraMissingHeaders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	v := frozenOuraVerifier("secret", now)
	body := []byte(`{}`)
	ts := strconv.FormatInt(now.Unix(), 10)

	if err := v.VerifySignature(body, "", ts); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("missing signature: got %v", err)
	}
	if err := v.VerifySignature(body, ouraSign("secret", ts, body), ""); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("missing timestamp: got %v", err)
	}
	if err := v.VerifySignature(body, ouraSign("secret", ts, body), "not-a-number"); !errors.Is(err, domain.ErrSignatureInvalid) {
		t.Fatalf("garbage timestamp: got %v", err)
	}
}

func TestOuraParseEvent(t *testing.T) {
	v := NewOuraVerifier("secret", "token")

	event, err := v.ParseEvent([]byte(`{"event_type":"update","object":"daily_activity","user_id":"u2","data_id":"d9","timestamp":"2026-08-27T12:00:00+00:00"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if event.EventType != "update" || event.Object != "daily_activity" || event.UserID != "u2" {
		t.Fatalf("parsed %+v", event)
	}

	if _, err := v.ParseEvent([]byte(`[1,2`)); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestOuraVerifyEndpoint(t *testing.T) {
	v := NewOuraVerifier("secret", "echo-me")

	if !v.VerifyEndpoint("echo-me") {
		t.Error("matching verification token should pass")
	}
	if v.VerifyEndpoint("wrong-token") {
		t.Error("wrong verification token should fail")
	}
	if v.VerifyEndpoint("") {
		t.Error("empty verification token should fail")
	}
}
