package usecase

import (
	"context"

	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	apperrors "github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"go.uber.org/zap"
)

// WebhookOutcome tells the transport what happened to an accepted delivery
type WebhookOutcome struct {
	Kind       string
	Reference  string
	Ignored    bool
	Duplicate  bool
	Activation *ActivationResult
}

// WebhookService runs verify, parse and activate for one delivery
type WebhookService struct {
	verifier  *SignatureVerifier
	parser    *EventParser
	activator *ActivationService
	events    domainRepo.WebhookEventRepository
	logger    *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	verifier *SignatureVerifier,
	parser *EventParser,
	activator *ActivationService,
	events domainRepo.WebhookEventRepository,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		verifier:  verifier,
		parser:    parser,
		activator: activator,
		events:    events,
		logger:    logger,
	}
}

// Handle processes the raw body. Nothing is parsed or written before the
// signature checks out.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (*WebhookOutcome, error) {
	if err := s.verifier.Verify(body, signature); err != nil {
		return nil, err
	}

	event, err := s.parser.Parse(body)
	if err != nil {
		return nil, err
	}

	outcome := &WebhookOutcome{Kind: event.Kind, Reference: event.Reference}
	logger := s.logger.With(
		zap.String("event_type", event.Kind),
		zap.String("reference", event.Reference))

	key := event.DeliveryKey()
	created, err := s.events.Record(ctx, key, event.Kind, event.Reference, event.Raw)
	if err != nil {
		// the delivery log is auxiliary
		logger.Warn("Failed to record webhook delivery", zap.Error(err))
	}
	outcome.Duplicate = err == nil && !created
	if outcome.Duplicate {
		logger.Info("Webhook redelivered, processing again")
	}

	if !event.Recognized() {
		outcome.Ignored = true
		logger.Info("Ignoring unhandled webhook event")
		s.markProcessed(ctx, key, logger)
		return outcome, nil
	}

	activation, err := s.activator.Activate(ctx, *event.Charge)
	if err != nil {
		if markErr := s.events.MarkFailed(ctx, key, err); markErr != nil {
			logger.Warn("Failed to mark webhook delivery failed", zap.Error(markErr))
		}
		return nil, apperrors.Wrap(err, "subscription activation failed")
	}

	outcome.Activation = activation
	s.markProcessed(ctx, key, logger)
	return outcome, nil
}

func (s *WebhookService) markProcessed(ctx context.Context, key string, logger *zap.Logger) {
	if err := s.events.MarkProcessed(ctx, key); err != nil {
		logger.Warn("Failed to mark webhook delivery processed", zap.Error(err))
	}
}
