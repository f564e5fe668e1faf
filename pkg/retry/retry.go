// Package retry는 멱등한 작업을 백오프와 함께 재실행하는 범용 실행기를 제공합니다.
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"go.uber.org/zap"
)

// DefaultMaxAttempts 기본 최대 시도 횟수
const DefaultMaxAttempts = 3

// Operation 재시도 대상 작업. 호출자가 멱등성을 보장해야 합니다.
type Operation func(ctx context.Context) error

// DelayFunc 실패한 시도 번호(1부터 시작)를 받아 다음 시도 전 대기 시간을 반환합니다
type DelayFunc func(attempt int) time.Duration

// Linear는 base * attempt 만큼 대기하는 선형 백오프입니다
func Linear(base time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Policy 재시도 정책
type Policy struct {
	// MaxAttempts 최초 시도를 포함한 최대 시도 횟수 (0 이하이면 DefaultMaxAttempts)
	MaxAttempts int
	// Delay 시도 사이 대기 시간 (nil이면 대기하지 않음)
	Delay DelayFunc
}

// DefaultPolicy는 3회 시도와 선형 백오프 정책을 반환합니다
func DefaultPolicy(baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       Linear(baseDelay),
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) delay(attempt int) time.Duration {
	if p.Delay == nil {
		return 0
	}
	return p.Delay(attempt)
}

// ExhaustedError 모든 시도가 실패했을 때 마지막 원인을 담습니다
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Executor 정책에 따라 작업을 실행합니다. 여러 고루틴에서 동시에 사용해도 안전합니다.
type Executor struct {
	logger *zap.Logger
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor 새로운 재시도 실행기를 생성합니다
func NewExecutor(logger *zap.Logger, policy Policy) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		logger: logger,
		policy: policy,
		sleep:  sleepContext,
	}
}

// Policy 실행기의 정책을 반환합니다
func (e *Executor) Policy() Policy {
	return e.policy
}

// Do는 작업이 성공하거나 시도 횟수를 모두 소진할 때까지 실행합니다.
// 소진되면 RETRIES_EXHAUSTED 코드의 AppError로 마지막 에러를 감싸 반환합니다.
func (e *Executor) Do(ctx context.Context, name string, op Operation) error {
	maxAttempts := e.policy.attempts()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				e.logger.Info("Operation succeeded after retry",
					zap.String("operation", name),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		wait := e.policy.delay(attempt)
		e.logger.Warn("Operation attempt failed",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("next_delay", wait),
			zap.Error(lastErr))

		if err := e.sleep(ctx, wait); err != nil {
			e.logger.Warn("Retry aborted by context",
				zap.String("operation", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return errors.NewAppError(errors.ErrRetriesExhausted,
				fmt.Sprintf("%s aborted", name), stderrors.Join(err, lastErr))
		}
	}

	e.logger.Error("Operation attempt failed, retries exhausted",
		zap.String("operation", name),
		zap.Int("attempt", maxAttempts),
		zap.Int("max_attempts", maxAttempts),
		zap.Error(lastErr))

	return errors.NewAppError(errors.ErrRetriesExhausted,
		fmt.Sprintf("%s: retries exhausted", name),
		&ExhaustedError{Operation: name, Attempts: maxAttempts, Err: lastErr})
}

// sleepContext는 컨텍스트가 취소되면 즉시 반환합니다
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
