package database

import (
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate creates the delivery log table and its indexes
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(&model.PaystackWebhookEvent{}); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_paystack_webhook_events_failed ON paystack_webhook_events (created_at) WHERE status = 'failed'`).Error
}
