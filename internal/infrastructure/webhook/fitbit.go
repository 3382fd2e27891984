// Package webhook implements provider-specific webhook authentication.
// Signatures are always computed over the raw request body bytes, before any
// JSON parsing.
package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"

	"jarvis-integrations-layer/internal/domain"
)

// FitbitSignatureHeader carries the base64 HMAC Fitbit sends with each POST.
const FitbitSignatureHeader = "X-Fitbit-Signature"

// FitbitVerifier authenticates Fitbit webhook traffic. Deliveries are signed
// with HMAC-SHA1 keyed by the OAuth client secret plus a trailing "&".
type FitbitVerifier struct {
	clientSecret     string
	verificationCode string
}

// NewFitbitVerifier creates a verifier from the Fitbit app credentials.
func NewFitbitVerifier(clientSecret, verificationCode string) *FitbitVerifier {
	return &FitbitVerifier{
		clientSecret:     clientSecret,
		verificationCode: verificationCode,
	}
}

// VerifyEndpoint handles Fitbit's subscriber verification handshake. Returns
// true only for a subscribe-mode request whose challenge matches the
// configured verification code.
func (v *FitbitVerifier) VerifyEndpoint(mode, verify string) bool {
	return mode == "subscribe" && verify != "" && verify == v.verificationCode
}

// VerifySignature checks the delivery signature against the raw body.
func (v *FitbitVerifier) VerifySignature(body []byte, signature string) error {
	if signature == "" {
		return domain.ErrSignatureInvalid
	}

	mac := hmac.New(sha1.New, []byte(v.clientSecret+"&"))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// ParseEvents decodes the verified body into the notification array.
func (v *FitbitVerifier) ParseEvents(body []byte) ([]domain.FitbitEvent, error) {
	var events []domain.FitbitEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	return events, nil
}
