// Package billing verifies inbound payment-gateway events. Every
// subscription transition is gated on this check: an event with a bad
// signature is dropped without touching account state.
package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"

	"github.com/passvault/passvault-server/internal/model"
)

// Signature algorithm names accepted in configuration.
const (
	AlgHMACSHA256 = "hmac-sha256"
	AlgHMACSHA512 = "hmac-sha512"
)

// Verifier checks payment-gateway event signatures with a shared secret.
type Verifier struct {
	secret  []byte
	newHash func() hash.Hash
}

// NewVerifier creates a Verifier for the configured algorithm.
func NewVerifier(secret, alg string) (*Verifier, error) {
	v := &Verifier{secret: []byte(secret)}
	switch alg {
	case AlgHMACSHA256:
		v.newHash = sha256.New
	case AlgHMACSHA512:
		v.newHash = sha512.New
	default:
		return nil, fmt.Errorf("unsupported signature algorithm: %q", alg)
	}
	return v, nil
}

// Verify recomputes the expected signature over the event and compares it in
// constant time. Returns model.ErrInvalidSignature on any mismatch.
func (v *Verifier) Verify(event model.SubscriptionEvent) error {
	presented, err := hex.DecodeString(event.Signature)
	if err != nil {
		return model.ErrInvalidSignature
	}

	mac := hmac.New(v.newHash, v.secret)
	mac.Write(signingInput(event))
	expected := mac.Sum(nil)

	if !hmac.Equal(presented, expected) {
		return model.ErrInvalidSignature
	}

	return nil
}

// Sign computes the signature the gateway is expected to attach. Exposed for
// tests and local tooling; the server itself only verifies.
func (v *Verifier) Sign(event model.SubscriptionEvent) string {
	mac := hmac.New(v.newHash, v.secret)
	mac.Write(signingInput(event))
	return hex.EncodeToString(mac.Sum(nil))
}

// signingInput binds every field the handler acts on. Leaving the reference or
// status outside the MAC would let a signed event be replayed against another
// account or with a rewritten status.
func signingInput(event model.SubscriptionEvent) []byte {
	return []byte(event.Reference + "|" + event.PaymentID + "|" + event.SubscriptionID + "|" + string(event.Status))
}
