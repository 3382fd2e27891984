package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"jarvis-integrations-layer/internal/domain"
)

// Header names for Oura webhook deliveries.
const (
	OuraSignatureHeader = "Oura-Signature"
	OuraTimestampHeader = "Oura-Timestamp"
)

// ouraReplayWindow is the maximum age of a delivery timestamp.
const ouraReplayWindow = 300 * time.Second

// OuraVerifier authenticates Oura webhook traffic using the versioned
// "v0=<hex hmac-sha256>" scheme over "v0:<timestamp>:<raw body>".
type OuraVerifier struct {
	secret            string
	verificationToken string
	now               func() time.Time
}

// NewOuraVerifier creates a verifier from the Oura webhook credentials.
func NewOuraVerifier(secret, verificationToken string) *OuraVerifier {
	return &OuraVerifier{
		secret:            secret,
		verificationToken: verificationToken,
		now:               time.Now,
	}
}

// VerifyEndpoint handles Oura's endpoint registration handshake. Returns true
// when the submitted token matches the configured verification token.
func (v *OuraVerifier) VerifyEndpoint(token string) bool {
	return token != "" && token == v.verificationToken
}

// VerifySignature checks the delivery timestamp and signature against the raw
// body. Timestamps older than the replay window are rejected before any HMAC
// work.
func (v *OuraVerifier) VerifySignature(body []byte, signature, timestamp string) error {
	if signature == "" || timestamp == "" {
		return domain.ErrSignatureInvalid
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.ErrSignatureInvalid
	}
	age := v.now().Unix() - ts
	if age > int64(ouraReplayWindow.Seconds()) || age < -int64(ouraReplayWindow.Seconds()) {
		return domain.ErrReplayRejected
	}

	mac := hmac.New(sha256.New, []byte(v.secret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// ParseEvent decodes the verified body into the notification object.
func (v *OuraVerifier) ParseEvent(body []byte) (*domain.OuraEvent, error) {
	var event domain.OuraEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	return &event, nil
}
