package repository

import (
	"context"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
)

// UserRepository manages the subscription sub-document of user profiles.
type UserRepository interface {
	// MergeSubscription upserts users/{userID}.subscription field by field.
	MergeSubscription(ctx context.Context, userID string, sub entity.Subscription) error
	FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error)
	// GetSubscription returns nil when the profile does not exist.
	GetSubscription(ctx context.Context, userID string) (*entity.Subscription, error)
	// ExpireSubscription sets status to expired and removes planId and planName
	// only while the subscription is still active with expiresAt <= now.
	// It reports whether the profile matched.
	ExpireSubscription(ctx context.Context, userID string, now time.Time) (bool, error)
}

// LedgerRepository manages ledger entries keyed by payment reference.
type LedgerRepository interface {
	Upsert(ctx context.Context, entry entity.LedgerEntry) error
	FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error)
	// ExpireBatch transitions the given references to expired in one atomic write
	// and returns how many were modified. Entries renewed past now are skipped.
	ExpireBatch(ctx context.Context, references []string, now time.Time) (int64, error)
	Collection() string
}
