package database

import (
	"github.com/SOMALeoAfrica/Webhook-Server/internal/adapter/repository"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Users         domainRepo.UserRepository
	Ledger        domainRepo.LedgerRepository
	StudentLedger domainRepo.LedgerRepository
	Claims        domainRepo.ClaimsRepository
	WebhookEvents domainRepo.WebhookEventRepository
}

// NewRepositories creates repository instances. db may be nil when the delivery log is disabled.
func NewRepositories(cfg *config.Config, mongoDB *mongo.Database, db *gorm.DB, logger *zap.Logger) *Repositories {
	collections := cfg.Mongo.Collections

	var events domainRepo.WebhookEventRepository
	if db != nil {
		events = repository.NewWebhookRepository(db, logger)
	} else {
		events = repository.NewNopWebhookRepository()
	}

	return &Repositories{
		Users:         repository.NewUserRepository(mongoDB.Collection(collections.Users), logger),
		Ledger:        repository.NewLedgerRepository(mongoDB.Collection(collections.Subscriptions), logger),
		StudentLedger: repository.NewLedgerRepository(mongoDB.Collection(collections.StudentSubscriptions), logger),
		Claims: repository.NewSupabaseClaimsRepository(
			cfg.Supabase.URL,
			cfg.Supabase.ServiceRoleKey,
			cfg.Supabase.Timeout,
			logger,
		),
		WebhookEvents: events,
	}
}

// LedgerRepositories lists every ledger collection the sweeper may target
func (r *Repositories) LedgerRepositories() []domainRepo.LedgerRepository {
	return []domainRepo.LedgerRepository{r.Ledger, r.StudentLedger}
}
