package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) MergeSubscription(ctx context.Context, userID string, sub entity.Subscription) error {
	return m.Called(ctx, userID, sub).Error(0)
}

func (m *MockUserRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExpiredSubscription), args.Error(1)
}

func (m *MockUserRepository) GetSubscription(ctx context.Context, userID string) (*entity.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockUserRepository) ExpireSubscription(ctx context.Context, userID string, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, now)
	return args.Bool(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
	name string
}

func (m *MockLedgerRepository) Upsert(ctx context.Context, entry entity.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) FindExpiredActive(ctx context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ExpiredSubscription), args.Error(1)
}

func (m *MockLedgerRepository) ExpireBatch(ctx context.Context, references []string, now time.Time) (int64, error) {
	args := m.Called(ctx, references, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepository) Collection() string {
	return m.name
}

// MockClaimsRepository is a mock implementation of ClaimsRepository
type MockClaimsRepository struct {
	mock.Mock
}

func (m *MockClaimsRepository) SetClaims(ctx context.Context, userID string, claims entity.Claims) error {
	return m.Called(ctx, userID, claims).Error(0)
}

func (m *MockClaimsRepository) ClearClaims(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// MockWebhookEventRepository is a mock implementation of WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Record(ctx context.Context, key, eventType, reference string, payload json.RawMessage) (bool, error) {
	args := m.Called(ctx, key, eventType, reference, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, key string, cause error) error {
	return m.Called(ctx, key, cause).Error(0)
}

// MockPublisher is a mock implementation of messaging.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}
