package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/adapter/repository"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/middleware/auth"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/messaging"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "sk_test_scenario"
	cronSecret = "cron-secret"
	chargeBody = `{"event":"charge.success","data":{"metadata":{"userId":"u1","planId":"plan_monthly_x","planName":"Pro"},"paid_at":"2024-01-01T00:00:00Z","reference":"ref1","channel":"card","amount":5000,"currency":"NGN","customer":{"email":"a@b.com"}}}`
)

// memStore keeps profiles, ledgers and claims in memory
type memStore struct {
	mu      sync.Mutex
	users   map[string]entity.Subscription
	ledgers map[string]map[string]entity.LedgerEntry
	claims  map[string]entity.Claims
	writes  int
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]entity.Subscription{},
		ledgers: map[string]map[string]entity.LedgerEntry{},
		claims:  map[string]entity.Claims{},
	}
}

type memUsers struct{ *memStore }

func (m memUsers) MergeSubscription(_ context.Context, userID string, sub entity.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.users[userID] = sub
	return nil
}

func (m memUsers) FindExpiredActive(_ context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ExpiredSubscription
	for id, sub := range m.users {
		if sub.IsExpiredAt(now) {
			out = append(out, entity.ExpiredSubscription{ID: id, UserID: id, PlanID: sub.PlanID, ExpiresAt: sub.ExpiresAt})
		}
	}
	return out, nil
}

func (m memUsers) GetSubscription(_ context.Context, userID string) (*entity.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (m memUsers) ExpireSubscription(_ context.Context, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.users[userID]
	if !ok || !sub.IsExpiredAt(now) {
		return false, nil
	}
	m.writes++
	sub.Status = entity.SubscriptionStatusExpired
	sub.PlanID = ""
	sub.PlanName = ""
	m.users[userID] = sub
	return true, nil
}

type memLedger struct {
	*memStore
	name string
}

func (m memLedger) Collection() string { return m.name }

func (m memLedger) Upsert(_ context.Context, entry entity.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.ledgers[m.name] == nil {
		m.ledgers[m.name] = map[string]entity.LedgerEntry{}
	}
	m.ledgers[m.name][entry.Reference] = entry
	return nil
}

func (m memLedger) FindExpiredActive(_ context.Context, now time.Time) ([]entity.ExpiredSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.ExpiredSubscription
	for ref, entry := range m.ledgers[m.name] {
		if entry.IsExpiredAt(now) {
			out = append(out, entity.ExpiredSubscription{ID: ref, UserID: entry.UserID})
		}
	}
	return out, nil
}

func (m memLedger) ExpireBatch(_ context.Context, references []string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, ref := range references {
		entry, ok := m.ledgers[m.name][ref]
		if ok && entry.IsExpiredAt(now) {
			entry.Status = entity.SubscriptionStatusExpired
			m.ledgers[m.name][ref] = entry
			n++
		}
	}
	m.writes++
	return n, nil
}

type memClaims struct{ *memStore }

func (m memClaims) SetClaims(_ context.Context, userID string, claims entity.Claims) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.claims[userID] = claims
	return nil
}

func (m memClaims) ClearClaims(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	delete(m.claims, userID)
	return nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()

	cfg := config.Default()
	cfg.Paystack.SecretKey = testSecret
	cfg.Cron.Secret = cronSecret

	store := newMemStore()
	users := memUsers{store}
	ledger := memLedger{store, cfg.Mongo.Collections.Subscriptions}
	students := memLedger{store, cfg.Mongo.Collections.StudentSubscriptions}
	claims := memClaims{store}
	logger := zap.NewNop()

	activator := usecase.NewActivationService(users, ledger, claims,
		retry.NewExecutor(logger, retry.Policy{MaxAttempts: 3}),
		messaging.NewNopPublisher(),
		usecase.ActivationConfig{Policy: entity.DefaultPlanPolicy()},
		logger)
	webhooks := usecase.NewWebhookService(usecase.NewSignatureVerifier(testSecret), usecase.NewEventParser(),
		activator, repository.NewNopWebhookRepository(), logger)
	sweeper := usecase.NewExpirySweeper(users, []domainRepo.LedgerRepository{ledger, students}, claims,
		messaging.NewNopPublisher(), "subscriptions", entity.DefaultRole, 2, logger)

	return NewServer(cfg, logger, webhooks, sweeper), store
}

func sign(body string) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(s *Server, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/paystack/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("x-paystack-signature", signature)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func getCron(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.IssueCronToken(cronSecret, "test", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Liveness(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}

func TestServer_ChargeSuccessActivates(t *testing.T) {
	s, store := newTestServer(t)

	rec := postWebhook(s, chargeBody, sign(chargeBody))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sub := store.users["u1"]
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), sub.ExpiresAt)
	assert.Equal(t, 50.0, sub.Amount)

	entry, ok := store.ledgers["subscriptions"]["ref1"]
	require.True(t, ok)
	assert.Equal(t, "a@b.com", entry.Email)

	assert.Equal(t, entity.Claims{Subscription: "active", Plan: "plan_monthly_x", Role: "teacher"}, store.claims["u1"])
}

func TestServer_ReplayIsIdempotent(t *testing.T) {
	s, store := newTestServer(t)

	require.Equal(t, http.StatusOK, postWebhook(s, chargeBody, sign(chargeBody)).Code)
	first := store.ledgers["subscriptions"]["ref1"]

	require.Equal(t, http.StatusOK, postWebhook(s, chargeBody, sign(chargeBody)).Code)

	assert.Len(t, store.ledgers["subscriptions"], 1)
	assert.Equal(t, first, store.ledgers["subscriptions"]["ref1"])
}

func TestServer_InvalidSignature(t *testing.T) {
	s, store := newTestServer(t)

	for _, signature := range []string{"", "deadbeef", sign(chargeBody + " ")} {
		rec := postWebhook(s, chargeBody, signature)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	assert.Zero(t, store.writes)
}

func TestServer_UnknownEventAcknowledged(t *testing.T) {
	s, store := newTestServer(t)
	body := `{"event":"transfer.success","data":{"reference":"trf_1"}}`

	rec := postWebhook(s, body, sign(body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Zero(t, store.writes)
}

func TestServer_MalformedPayload(t *testing.T) {
	s, store := newTestServer(t)
	body := `{"event":"charge.success","data":`

	rec := postWebhook(s, body, sign(body))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, store.writes)
}

func TestServer_RevokeExpiredClaims(t *testing.T) {
	s, store := newTestServer(t)
	require.Equal(t, http.StatusOK, postWebhook(s, chargeBody, sign(chargeBody)).Code)

	rec := getCron(t, s, "/cron/revoke-expired-claims")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked 1 of 1 expired subscriptions, 0 failed", rec.Body.String())
	assert.Equal(t, entity.SubscriptionStatusExpired, store.users["u1"].Status)
	assert.Empty(t, store.users["u1"].PlanID)
	assert.Empty(t, store.users["u1"].PlanName)
	_, hasClaims := store.claims["u1"]
	assert.False(t, hasClaims)
}

func TestServer_CleanupExpiredStudentPlans(t *testing.T) {
	s, store := newTestServer(t)
	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()
	store.ledgers["subscriptions_students"] = map[string]entity.LedgerEntry{
		"old":     {Subscription: entity.Subscription{Status: entity.SubscriptionStatusActive, ExpiresAt: past, Reference: "old"}},
		"current": {Subscription: entity.Subscription{Status: entity.SubscriptionStatusActive, ExpiresAt: future, Reference: "current"}},
		"done":    {Subscription: entity.Subscription{Status: entity.SubscriptionStatusExpired, ExpiresAt: past, Reference: "done"}},
	}

	rec := getCron(t, s, "/cron/cleanup-expired-student-plans")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired 1 of 1 active subscriptions past expiry in subscriptions_students", rec.Body.String())
	assert.Equal(t, entity.SubscriptionStatusExpired, store.ledgers["subscriptions_students"]["old"].Status)
	assert.Equal(t, entity.SubscriptionStatusActive, store.ledgers["subscriptions_students"]["current"].Status)
}

func TestServer_CronRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/revoke-expired-claims", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
