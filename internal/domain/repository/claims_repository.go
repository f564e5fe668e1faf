package repository

import (
	"context"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
)

// ClaimsRepository writes access-control claims to the identity provider.
type ClaimsRepository interface {
	SetClaims(ctx context.Context, userID string, claims entity.Claims) error
	// ClearClaims removes every claim key owned by this service.
	ClearClaims(ctx context.Context, userID string) error
}
