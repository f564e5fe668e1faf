// Package app wires configuration, clients and services for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/infrastructure/database"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/logger"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/messaging"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultEventChannel = "subscriptions"

// App holds the process-scoped clients and the services built on them
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Webhooks *usecase.WebhookService
	Sweeper  *usecase.ExpirySweeper

	mongo     *mongo.Client
	db        *gorm.DB
	publisher messaging.Publisher
}

// NewLogger builds the zap logger described by cfg.Log
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: !cfg.Service.IsProduction() && cfg.Log.Format == "console",
		Service:     cfg.Service.Name,
	})
}

// New connects every backend and assembles the services. Call Close on shutdown.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	client, err := database.NewMongoClient(ctx, &cfg.Mongo, log)
	if err != nil {
		return nil, err
	}
	a.mongo = client

	if cfg.Database.Enabled {
		db, err := database.NewConnection(&cfg.Database, log)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.db = db
		if err := database.Migrate(db, log); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	a.publisher = messaging.NewNopPublisher()
	if cfg.Redis.Enabled() {
		publisher, err := messaging.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// lifecycle events are best effort
			log.Warn("Redis unavailable, lifecycle events disabled", zap.Error(err))
		} else {
			a.publisher = publisher
			log.Info("Redis publisher connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	repos := database.NewRepositories(cfg, client.Database(cfg.Mongo.Database), a.db, log)
	channel := cfg.Redis.Channel
	if channel == "" {
		channel = defaultEventChannel
	}

	policy := entity.DefaultPlanPolicy()
	if cfg.Subscription.DefaultDurationDays > 0 {
		policy.DefaultDays = cfg.Subscription.DefaultDurationDays
	}

	retrier := retry.NewExecutor(log, retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       retry.Linear(cfg.Retry.BaseDelay),
	})

	activator := usecase.NewActivationService(
		repos.Users,
		repos.Ledger,
		repos.Claims,
		retrier,
		a.publisher,
		usecase.ActivationConfig{
			Policy:       policy,
			DefaultRole:  cfg.Subscription.DefaultRole,
			EventChannel: channel,
		},
		log,
	)

	a.Webhooks = usecase.NewWebhookService(
		usecase.NewSignatureVerifier(cfg.Paystack.SecretKey),
		usecase.NewEventParser(),
		activator,
		repos.WebhookEvents,
		log,
	)

	a.Sweeper = usecase.NewExpirySweeper(
		repos.Users,
		repos.LedgerRepositories(),
		repos.Claims,
		a.publisher,
		channel,
		cfg.Subscription.DefaultRole,
		cfg.Subscription.SweepConcurrency,
		log,
	)

	return a, nil
}

// Close releases every client that was opened
func (a *App) Close(ctx context.Context) error {
	var errs []error

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db, a.Logger); err != nil {
			errs = append(errs, err)
		}
	}
	if a.mongo != nil {
		if err := database.DisconnectMongo(ctx, a.mongo, a.Logger); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
