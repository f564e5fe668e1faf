package errors

import (
	"errors"

	apperrors "github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
)

var (
	// ErrMissingSignature indicates the x-paystack-signature header was absent
	ErrMissingSignature = errors.New("missing webhook signature")

	// ErrSignatureMismatch indicates the computed HMAC did not match the header
	ErrSignatureMismatch = errors.New("webhook signature mismatch")

	// ErrSecretNotConfigured indicates no shared secret was configured
	ErrSecretNotConfigured = errors.New("webhook secret not configured")

	// ErrInvalidPaidAt indicates paid_at could not be parsed as a timestamp
	ErrInvalidPaidAt = errors.New("invalid paid_at timestamp")

	// ErrClaimsBackend indicates the identity provider rejected or failed a claims update
	ErrClaimsBackend = errors.New("claims backend failure")
)

func NewInvalidSignatureError(cause error) error {
	return apperrors.NewAppError(apperrors.ErrInvalidSignature, "invalid signature", cause)
}

func NewMalformedPayloadError(cause error) error {
	return apperrors.NewAppError(apperrors.ErrMalformedPayload, "malformed webhook payload", cause)
}
