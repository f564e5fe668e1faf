package repository

import (
	"context"
	"encoding/json"
)

// WebhookEventRepository is the optional delivery log for received webhooks.
type WebhookEventRepository interface {
	// Record stores the delivery once. It reports false when the key was already recorded.
	Record(ctx context.Context, key, eventType, reference string, payload json.RawMessage) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
	MarkFailed(ctx context.Context, key string, cause error) error
}
