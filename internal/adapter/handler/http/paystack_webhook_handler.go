package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	apperrors "github.com/SOMALeoAfrica/Webhook-Server/pkg/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA512 of the request body
const SignatureHeader = "x-paystack-signature"

// WebhookProcessor handles one raw webhook delivery
type WebhookProcessor interface {
	Handle(ctx context.Context, body []byte, signature string) (*usecase.WebhookOutcome, error)
}

type PaystackWebhookHandler struct {
	processor WebhookProcessor
	logger    *zap.Logger
}

func NewPaystackWebhookHandler(processor WebhookProcessor, logger *zap.Logger) *PaystackWebhookHandler {
	return &PaystackWebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// HandleWebhook reads the body untouched so the signature is computed over the exact bytes sent.
func (h *PaystackWebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return apperrors.NewAppError(apperrors.ErrInvalidArgument, "error reading request body", err)
	}

	outcome, err := h.processor.Handle(c.Request().Context(), body, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		return err
	}

	if outcome.Ignored {
		return c.String(http.StatusOK, fmt.Sprintf("Event %s ignored", outcome.Kind))
	}
	return c.String(http.StatusOK, "Webhook processed")
}
