package usecase

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	domainErrors "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/errors"
)

// SignatureVerifier checks x-paystack-signature, the hex HMAC-SHA512 of the raw body
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier creates a verifier for the shared secret
func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: []byte(secret)}
}

// Sign returns the signature Paystack would send for payload
func (v *SignatureVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares signature against the HMAC of the untouched payload bytes.
// Any failure, including a panic while hashing, rejects the request.
func (v *SignatureVerifier) Verify(payload []byte, signature string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domainErrors.NewInvalidSignatureError(fmt.Errorf("signature verification panicked: %v", r))
		}
	}()

	if len(v.secret) == 0 {
		return domainErrors.NewInvalidSignatureError(domainErrors.ErrSecretNotConfigured)
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return domainErrors.NewInvalidSignatureError(domainErrors.ErrMissingSignature)
	}

	provided, decodeErr := hex.DecodeString(signature)
	if decodeErr != nil {
		return domainErrors.NewInvalidSignatureError(domainErrors.ErrSignatureMismatch)
	}

	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), provided) {
		return domainErrors.NewInvalidSignatureError(domainErrors.ErrSignatureMismatch)
	}
	return nil
}
