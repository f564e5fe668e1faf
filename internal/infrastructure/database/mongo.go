package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// NewMongoClient connects to the document store and verifies the primary is reachable
func NewMongoClient(ctx context.Context, cfg *config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetAppName("webhook-server")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("MongoDB connected successfully", zap.String("database", cfg.Database))
	return client, nil
}

// DisconnectMongo closes the client
func DisconnectMongo(ctx context.Context, client *mongo.Client, logger *zap.Logger) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	logger.Info("MongoDB connection closed")
	return nil
}
