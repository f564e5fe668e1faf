package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	domainErrors "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/errors"
	domainRepo "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/repository"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	defaultClaimsTimeout    = 10 * time.Second
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// ClaimsStatusError is a non-2xx answer from the admin API
type ClaimsStatusError struct {
	StatusCode int
	Body       string
}

func (e *ClaimsStatusError) Error() string {
	return fmt.Sprintf("supabase admin api returned %d: %s", e.StatusCode, e.Body)
}

// SupabaseClaimsRepository stores claims in auth.users.app_metadata via the GoTrue admin API
type SupabaseClaimsRepository struct {
	client         *http.Client
	baseURL        string
	serviceRoleKey string
	breaker        *gobreaker.CircuitBreaker[struct{}]
	logger         *zap.Logger
}

// NewSupabaseClaimsRepository creates a claims repository for the given project URL
func NewSupabaseClaimsRepository(
	baseURL string,
	serviceRoleKey string,
	timeout time.Duration,
	logger *zap.Logger,
) *SupabaseClaimsRepository {
	if timeout <= 0 {
		timeout = defaultClaimsTimeout
	}

	settings := gobreaker.Settings{
		Name:    "supabase-claims",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		// rejected requests mean the backend is up
		IsSuccessful: func(err error) bool {
			var statusErr *ClaimsStatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &SupabaseClaimsRepository{
		client:         &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(baseURL, "/"),
		serviceRoleKey: serviceRoleKey,
		breaker:        gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:         logger,
	}
}

var _ domainRepo.ClaimsRepository = (*SupabaseClaimsRepository)(nil)

func (r *SupabaseClaimsRepository) SetClaims(ctx context.Context, userID string, claims entity.Claims) error {
	return r.updateAppMetadata(ctx, userID, map[string]interface{}{
		"subscription": claims.Subscription,
		"plan":         claims.Plan,
		"role":         claims.Role,
	})
}

// ClearClaims sends null for every owned key, which GoTrue treats as removal.
func (r *SupabaseClaimsRepository) ClearClaims(ctx context.Context, userID string) error {
	metadata := make(map[string]interface{}, len(entity.ClaimKeys()))
	for _, key := range entity.ClaimKeys() {
		metadata[key] = nil
	}
	return r.updateAppMetadata(ctx, userID, metadata)
}

func (r *SupabaseClaimsRepository) updateAppMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	_, err := r.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, r.doUpdate(ctx, userID, metadata)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domainErrors.ErrClaimsBackend, err)
	}
	return err
}

func (r *SupabaseClaimsRepository) doUpdate(ctx context.Context, userID string, metadata map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"app_metadata": metadata})
	if err != nil {
		return fmt.Errorf("failed to encode claims: %w", err)
	}

	endpoint := fmt.Sprintf("%s/auth/v1/admin/users/%s", r.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", r.serviceRoleKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceRoleKey)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrClaimsBackend, err)
	}
	defer resp.Body.Close()

	r.logger.Debug("Supabase admin API responded",
		zap.String("user_id", userID),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)))

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("%w: %w", domainErrors.ErrClaimsBackend, &ClaimsStatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(respBody)),
	})
}
