package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	apperrors "github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"github.com/SOMALeoAfrica/Webhook-Server/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubProcessor struct {
	gotBody      []byte
	gotSignature string
	outcome      *usecase.WebhookOutcome
	err          error
}

func (s *stubProcessor) Handle(_ context.Context, body []byte, signature string) (*usecase.WebhookOutcome, error) {
	s.gotBody = body
	s.gotSignature = signature
	return s.outcome, s.err
}

type stubSweeper struct {
	collection string
	result     usecase.SweepResult
	err        error
}

func (s *stubSweeper) SweepLedger(_ context.Context, collection string) (usecase.SweepResult, error) {
	s.collection = collection
	return s.result, s.err
}

func (s *stubSweeper) RevokeExpiredClaims(context.Context) (usecase.SweepResult, error) {
	return s.result, s.err
}

func newEcho() *echo.Echo {
	e := echo.New()
	logger.WithEchoLogger(e, zap.NewNop())
	return e
}

func TestPaystackWebhookHandler_PassesRawBody(t *testing.T) {
	body := "{ \"event\" : \"charge.success\" }\n"
	processor := &stubProcessor{outcome: &usecase.WebhookOutcome{Kind: "charge.success"}}
	e := newEcho()
	e.POST("/paystack/webhook", NewPaystackWebhookHandler(processor, zap.NewNop()).HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/paystack/webhook", strings.NewReader(body))
	req.Header.Set("X-Paystack-Signature", "abc123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, string(processor.gotBody))
	assert.Equal(t, "abc123", processor.gotSignature)
}

func TestPaystackWebhookHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		outcome  *usecase.WebhookOutcome
		err      error
		wantCode int
		wantBody string
	}{
		{"processed", &usecase.WebhookOutcome{Kind: "charge.success"}, nil, http.StatusOK, "Webhook processed"},
		{"ignored", &usecase.WebhookOutcome{Kind: "transfer.success", Ignored: true}, nil, http.StatusOK, "Event transfer.success ignored"},
		{"bad signature", nil, apperrors.NewAppError(apperrors.ErrInvalidSignature, "invalid signature", nil), http.StatusBadRequest, "invalid signature"},
		{"malformed", nil, apperrors.NewAppError(apperrors.ErrMalformedPayload, "malformed webhook payload", nil), http.StatusInternalServerError, "malformed webhook payload"},
		{"exhausted", nil, apperrors.NewAppError(apperrors.ErrRetriesExhausted, "subscription activation failed", errors.New("mongo down")), http.StatusInternalServerError, "subscription activation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			processor := &stubProcessor{outcome: tt.outcome, err: tt.err}
			e.POST("/paystack/webhook", NewPaystackWebhookHandler(processor, zap.NewNop()).HandleWebhook)

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/paystack/webhook", strings.NewReader("{}")))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "mongo down")
		})
	}
}

func TestCronHandler_CleanupUsesStudentCollection(t *testing.T) {
	sweeper := &stubSweeper{result: usecase.SweepResult{Collection: "subscriptions_students", Matched: 3, Expired: 3}}
	e := newEcho()
	h := NewCronHandler(sweeper, "subscriptions_students", zap.NewNop())
	e.GET("/cron/cleanup-expired-student-plans", h.CleanupExpiredStudentPlans)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/cleanup-expired-student-plans", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "subscriptions_students", sweeper.collection)
	assert.Equal(t, "expired 3 of 3 active subscriptions past expiry in subscriptions_students", rec.Body.String())
}

func TestCronHandler_RevokeReportsFailuresAsText(t *testing.T) {
	sweeper := &stubSweeper{result: usecase.SweepResult{Matched: 4, Expired: 3, Failed: 1}}
	e := newEcho()
	e.GET("/cron/revoke-expired-claims", NewCronHandler(sweeper, "", zap.NewNop()).RevokeExpiredClaims)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/revoke-expired-claims", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "revoked 3 of 4 expired subscriptions, 1 failed", rec.Body.String())
}

func TestCronHandler_QueryFailure(t *testing.T) {
	sweeper := &stubSweeper{err: apperrors.NewAppError(apperrors.ErrSweepFailed, "claim sweep query failed", errors.New("no primary"))}
	e := newEcho()
	e.GET("/cron/revoke-expired-claims", NewCronHandler(sweeper, "", zap.NewNop()).RevokeExpiredClaims)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/revoke-expired-claims", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "claim sweep query failed", rec.Body.String())
}
