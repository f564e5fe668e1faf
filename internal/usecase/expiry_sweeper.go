package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	apperrors "github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/messaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SweepResult summarises one sweep pass
type SweepResult struct {
	Collection string `json:"collection,omitempty"`
	Matched    int    `json:"matched"`
	Expired    int64  `json:"expired"`
	Failed     int    `json:"failed"`
	// Renewed counts users whose subscription became active again after the
	// snapshot query; they are left untouched.
	Renewed int `json:"renewed,omitempty"`
}

// String renders the plain-text summary returned to the cron caller
func (r SweepResult) String() string {
	if r.Collection != "" {
		return fmt.Sprintf("expired %d of %d active subscriptions past expiry in %s", r.Expired, r.Matched, r.Collection)
	}
	summary := fmt.Sprintf("revoked %d of %d expired subscriptions, %d failed", r.Expired, r.Matched, r.Failed)
	if r.Renewed > 0 {
		summary += fmt.Sprintf(", %d renewed", r.Renewed)
	}
	return summary
}

type revokeOutcome int

const (
	revokeDone revokeOutcome = iota
	revokeFailed
	revokeRenewed
)

// ExpirySweeper transitions subscriptions past their expiry to expired
type ExpirySweeper struct {
	users       domainRepo.UserRepository
	ledgers     map[string]domainRepo.LedgerRepository
	claims      domainRepo.ClaimsRepository
	publisher   messaging.Publisher
	channel     string
	defaultRole string
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

// NewExpirySweeper creates a sweeper over the given ledger collections.
// concurrency bounds the claim revocation workers; values below 1 mean sequential.
// defaultRole is used when claims are restored for a user renewed mid-sweep.
func NewExpirySweeper(
	users domainRepo.UserRepository,
	ledgers []domainRepo.LedgerRepository,
	claims domainRepo.ClaimsRepository,
	publisher messaging.Publisher,
	channel string,
	defaultRole string,
	concurrency int,
	logger *zap.Logger,
) *ExpirySweeper {
	byName := make(map[string]domainRepo.LedgerRepository, len(ledgers))
	for _, ledger := range ledgers {
		byName[ledger.Collection()] = ledger
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if publisher == nil {
		publisher = messaging.NewNopPublisher()
	}
	return &ExpirySweeper{
		users:       users,
		ledgers:     byName,
		claims:      claims,
		publisher:   publisher,
		channel:     channel,
		defaultRole: defaultRole,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger,
	}
}

// SweepLedger expires every active entry in collection whose expiresAt <= now.
// Entries becoming active after the snapshot wait for the next run.
func (s *ExpirySweeper) SweepLedger(ctx context.Context, collection string) (SweepResult, error) {
	result := SweepResult{Collection: collection}

	ledger, ok := s.ledgers[collection]
	if !ok {
		return result, apperrors.NewAppError(apperrors.ErrInvalidArgument,
			fmt.Sprintf("unknown ledger collection %q", collection), nil)
	}

	now := s.now().UTC()
	expired, err := ledger.FindExpiredActive(ctx, now)
	if err != nil {
		return result, apperrors.NewAppError(apperrors.ErrSweepFailed, "ledger sweep query failed", err)
	}
	result.Matched = len(expired)
	if len(expired) == 0 {
		s.logger.Info("Ledger sweep found nothing to expire", zap.String("collection", collection))
		return result, nil
	}

	references := make([]string, 0, len(expired))
	for _, e := range expired {
		references = append(references, e.ID)
	}

	count, err := ledger.ExpireBatch(ctx, references, now)
	if err != nil {
		return result, apperrors.NewAppError(apperrors.ErrSweepFailed, "ledger sweep commit failed", err)
	}
	result.Expired = count

	s.logger.Info("Ledger sweep completed",
		zap.String("collection", collection),
		zap.Int("matched", result.Matched),
		zap.Int64("expired", result.Expired))
	return result, nil
}

// RevokeExpiredClaims clears claims and expires the profile of every user whose
// active subscription is past expiry. A user whose claims could not be cleared
// keeps an active profile so the next run picks them up again.
func (s *ExpirySweeper) RevokeExpiredClaims(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	now := s.now().UTC()
	expired, err := s.users.FindExpiredActive(ctx, now)
	if err != nil {
		return result, apperrors.NewAppError(apperrors.ErrSweepFailed, "claim sweep query failed", err)
	}
	result.Matched = len(expired)

	var revoked, failed, renewed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, candidate := range expired {
		candidate := candidate
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			switch s.revokeOne(ctx, candidate, now) {
			case revokeDone:
				revoked.Add(1)
			case revokeRenewed:
				renewed.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Expired = revoked.Load()
	result.Failed = int(failed.Load())
	result.Renewed = int(renewed.Load())

	s.logger.Info("Claim revocation sweep completed",
		zap.Int("matched", result.Matched),
		zap.Int64("revoked", result.Expired),
		zap.Int("failed", result.Failed),
		zap.Int("renewed", result.Renewed))
	return result, nil
}

// revokeOne re-reads the profile before clearing claims, and the profile update
// itself re-checks status and expiry. If a renewal lands between the two, the
// claims cleared here are restored from the renewed profile.
func (s *ExpirySweeper) revokeOne(ctx context.Context, candidate entity.ExpiredSubscription, now time.Time) revokeOutcome {
	logger := s.logger.With(zap.String("user_id", candidate.UserID))

	current, err := s.users.GetSubscription(ctx, candidate.UserID)
	if err != nil {
		logger.Error("Failed to re-read profile subscription", zap.Error(err))
		return revokeFailed
	}
	if current == nil || !current.IsExpiredAt(now) {
		logger.Info("Subscription renewed since snapshot, skipping")
		return revokeRenewed
	}

	if err := s.claims.ClearClaims(ctx, candidate.UserID); err != nil {
		logger.Error("Failed to clear claims", zap.Error(err))
		return revokeFailed
	}

	expired, err := s.users.ExpireSubscription(ctx, candidate.UserID, now)
	if err != nil {
		logger.Error("Failed to expire profile subscription after clearing claims", zap.Error(err))
		return revokeFailed
	}
	if !expired {
		return s.restoreClaims(ctx, candidate.UserID, logger)
	}

	event := messaging.NewEvent(EventSubscriptionExpired, map[string]interface{}{
		"userId":    candidate.UserID,
		"planId":    candidate.PlanID,
		"expiresAt": candidate.ExpiresAt,
	})
	if err := s.publisher.Publish(ctx, s.channel, event); err != nil {
		logger.Warn("Failed to publish expiry event", zap.Error(err))
	}
	return revokeDone
}

func (s *ExpirySweeper) restoreClaims(ctx context.Context, userID string, logger *zap.Logger) revokeOutcome {
	current, err := s.users.GetSubscription(ctx, userID)
	if err != nil {
		logger.Error("Failed to re-read renewed profile", zap.Error(err))
		return revokeFailed
	}
	if current == nil || !current.IsActive() {
		return revokeRenewed
	}

	if err := s.claims.SetClaims(ctx, userID, entity.ActiveClaims(current.PlanID, s.defaultRole)); err != nil {
		logger.Error("Failed to restore claims for renewed subscription", zap.Error(err))
		return revokeFailed
	}
	logger.Warn("Subscription renewed during sweep, claims restored",
		zap.String("plan_id", current.PlanID))
	return revokeRenewed
}
