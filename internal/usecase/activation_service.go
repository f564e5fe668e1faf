package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	domainErrors "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/errors"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/messaging"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/retry"
	"go.uber.org/zap"
)

// Lifecycle event types published on the subscriptions channel
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionExpired   = "subscription.expired"
)

// ActivationConfig carries the policy values resolved from configuration
type ActivationConfig struct {
	Policy       entity.PlanPolicy
	DefaultRole  string
	EventChannel string
}

// ActivationResult describes a completed activation
type ActivationResult struct {
	UserID    string    `json:"userId"`
	PlanID    string    `json:"planId"`
	Reference string    `json:"reference"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

// ActivationService applies a successful charge to the profile, the ledger and the claims store
type ActivationService struct {
	users     domainRepo.UserRepository
	ledger    domainRepo.LedgerRepository
	claims    domainRepo.ClaimsRepository
	retrier   *retry.Executor
	publisher messaging.Publisher
	config    ActivationConfig
	logger    *zap.Logger
}

// NewActivationService creates a new activation service
func NewActivationService(
	users domainRepo.UserRepository,
	ledger domainRepo.LedgerRepository,
	claims domainRepo.ClaimsRepository,
	retrier *retry.Executor,
	publisher messaging.Publisher,
	config ActivationConfig,
	logger *zap.Logger,
) *ActivationService {
	if config.DefaultRole == "" {
		config.DefaultRole = entity.DefaultRole
	}
	if len(config.Policy.Classes) == 0 && config.Policy.DefaultDays == 0 {
		config.Policy = entity.DefaultPlanPolicy()
	}
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}
	return &ActivationService{
		users:     users,
		ledger:    ledger,
		claims:    claims,
		retrier:   retrier,
		publisher: publisher,
		config:    config,
		logger:    logger,
	}
}

// Activate writes profile, ledger and claims in that order, each under retry.
// The writes are idempotent so a redelivered event converges on the same state.
func (s *ActivationService) Activate(ctx context.Context, charge entity.ChargeData) (*ActivationResult, error) {
	paidAt, err := charge.ParsePaidAt()
	if err != nil {
		return nil, domainErrors.NewMalformedPayloadError(fmt.Errorf("%w: %v", domainErrors.ErrInvalidPaidAt, err))
	}

	meta := charge.Metadata
	role := meta.Role
	if role == "" {
		role = s.config.DefaultRole
	}

	sub := entity.Subscription{
		Status:    entity.SubscriptionStatusActive,
		PlanID:    meta.PlanID,
		PlanName:  meta.PlanName,
		PaidAt:    paidAt.UTC(),
		ExpiresAt: s.config.Policy.ExpiresAt(meta.PlanID, paidAt),
		Reference: charge.Reference,
		Channel:   charge.Channel,
		Amount:    charge.MajorAmount(),
		Currency:  charge.Currency,
		UserID:    meta.UserID,
	}

	logger := s.logger.With(
		zap.String("user_id", meta.UserID),
		zap.String("reference", charge.Reference),
		zap.String("plan_id", meta.PlanID),
	)

	err = s.retrier.Do(ctx, "merge user subscription", func(ctx context.Context) error {
		return s.users.MergeSubscription(ctx, meta.UserID, sub)
	})
	if err != nil {
		return nil, err
	}

	err = s.retrier.Do(ctx, "upsert ledger entry", func(ctx context.Context) error {
		return s.ledger.Upsert(ctx, entity.LedgerEntry{Subscription: sub, Email: charge.Customer.Email})
	})
	if err != nil {
		return nil, err
	}

	claims := entity.ActiveClaims(meta.PlanID, role)
	err = s.retrier.Do(ctx, "set access claims", func(ctx context.Context) error {
		return s.claims.SetClaims(ctx, meta.UserID, claims)
	})
	if err != nil {
		return nil, err
	}

	result := &ActivationResult{
		UserID:    meta.UserID,
		PlanID:    meta.PlanID,
		Reference: charge.Reference,
		ExpiresAt: sub.ExpiresAt,
		Role:      role,
	}

	if err := s.publisher.Publish(ctx, s.config.EventChannel, messaging.NewEvent(EventSubscriptionActivated, result)); err != nil {
		logger.Warn("Failed to publish activation event", zap.Error(err))
	}

	logger.Info("Subscription activated",
		zap.Time("expires_at", sub.ExpiresAt),
		zap.Float64("amount", sub.Amount),
		zap.String("currency", sub.Currency))

	return result, nil
}
