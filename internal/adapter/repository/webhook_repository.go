package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/model"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookRepository creates a Postgres-backed webhook delivery log
func NewWebhookRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookRepository{
		db:     db,
		logger: logger,
	}
}

// Record saves a new delivery. Redeliveries bump the attempt counter instead.
func (r *webhookRepository) Record(ctx context.Context, key, eventType, reference string, payload json.RawMessage) (bool, error) {
	event := &model.PaystackWebhookEvent{
		DeliveryKey: key,
		EventType:   eventType,
		Reference:   reference,
		Status:      model.WebhookStatusProcessing,
		Data:        model.Payload(payload),
	}

	// Use ON CONFLICT to handle duplicate events
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("delivery_key", key),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return true, nil
	}

	err := r.db.WithContext(ctx).
		Model(&model.PaystackWebhookEvent{}).
		Where("delivery_key = ?", key).
		Updates(map[string]interface{}{
			"status":              model.WebhookStatusProcessing,
			"processing_attempts": gorm.Expr("processing_attempts + 1"),
		}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update redelivered webhook event: %w", err)
	}
	return false, nil
}

// MarkProcessed marks a webhook event as processed
func (r *webhookRepository) MarkProcessed(ctx context.Context, key string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.PaystackWebhookEvent{}).
		Where("delivery_key = ?", key).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"processed_at": &now,
			"last_error":   nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("delivery_key", key),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", key)
	}

	return nil
}

// MarkFailed marks a webhook event as failed. Paystack owns redelivery, so no retry is scheduled here.
func (r *webhookRepository) MarkFailed(ctx context.Context, key string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.PaystackWebhookEvent{}).
		Where("delivery_key = ?", key).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("delivery_key", key),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}

type nopWebhookRepository struct{}

// NewNopWebhookRepository is used when the delivery log database is disabled.
// Every delivery is reported as new.
func NewNopWebhookRepository() domainRepo.WebhookEventRepository {
	return nopWebhookRepository{}
}

func (nopWebhookRepository) Record(context.Context, string, string, string, json.RawMessage) (bool, error) {
	return true, nil
}

func (nopWebhookRepository) MarkProcessed(context.Context, string) error { return nil }

func (nopWebhookRepository) MarkFailed(context.Context, string, error) error { return nil }
