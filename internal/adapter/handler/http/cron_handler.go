package http

import (
	"context"
	"net/http"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Sweeper runs the expiry sweeps
type Sweeper interface {
	SweepLedger(ctx context.Context, collection string) (usecase.SweepResult, error)
	RevokeExpiredClaims(ctx context.Context) (usecase.SweepResult, error)
}

type CronHandler struct {
	sweeper           Sweeper
	studentCollection string
	logger            *zap.Logger
}

func NewCronHandler(sweeper Sweeper, studentCollection string, logger *zap.Logger) *CronHandler {
	return &CronHandler{
		sweeper:           sweeper,
		studentCollection: studentCollection,
		logger:            logger,
	}
}

// CleanupExpiredStudentPlans expires student ledger entries past expiry
func (h *CronHandler) CleanupExpiredStudentPlans(c echo.Context) error {
	result, err := h.sweeper.SweepLedger(c.Request().Context(), h.studentCollection)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, result.String())
}

// RevokeExpiredClaims clears claims for profiles past expiry.
// Per-user failures are reported in the summary, not as an error status.
func (h *CronHandler) RevokeExpiredClaims(c echo.Context) error {
	result, err := h.sweeper.RevokeExpiredClaims(c.Request().Context())
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		h.logger.Warn("Claim revocation sweep had failures", zap.Int("failed", result.Failed))
	}
	return c.String(http.StatusOK, result.String())
}
