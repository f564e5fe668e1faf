package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/domain/entity"
	domainErrors "github.com/SOMALeoAfrica/Webhook-Server/internal/domain/errors"
	"github.com/go-playground/validator/v10"
)

// ParsedEvent is a decoded webhook. Charge is set only for charge.success.
type ParsedEvent struct {
	Kind      string
	Reference string
	Charge    *entity.ChargeData
	Raw       json.RawMessage
}

// Recognized reports whether the event triggers a state change
func (e *ParsedEvent) Recognized() bool {
	return e.Charge != nil
}

// DeliveryKey identifies a delivery for the webhook log
func (e *ParsedEvent) DeliveryKey() string {
	if e.Reference != "" {
		return e.Kind + ":" + e.Reference
	}
	sum := sha256.Sum256(e.Raw)
	return e.Kind + ":sha256:" + hex.EncodeToString(sum[:16])
}

// EventParser decodes verified webhook bodies
type EventParser struct {
	validate *validator.Validate
}

func NewEventParser() *EventParser {
	return &EventParser{validate: validator.New()}
}

// Parse decodes the envelope. Unknown kinds parse successfully without a Charge.
func (p *EventParser) Parse(raw []byte) (*ParsedEvent, error) {
	var envelope entity.Event
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, domainErrors.NewMalformedPayloadError(fmt.Errorf("decode envelope: %w", err))
	}
	if envelope.Kind == "" {
		return nil, domainErrors.NewMalformedPayloadError(errors.New("missing event kind"))
	}

	event := &ParsedEvent{
		Kind: envelope.Kind,
		Raw:  json.RawMessage(raw),
	}

	if envelope.Kind != entity.EventChargeSuccess {
		event.Reference = peekReference(envelope.Data)
		return event, nil
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, domainErrors.NewMalformedPayloadError(errors.New("missing charge data"))
	}

	var charge entity.ChargeData
	if err := json.Unmarshal(envelope.Data, &charge); err != nil {
		return nil, domainErrors.NewMalformedPayloadError(fmt.Errorf("decode charge data: %w", err))
	}
	if err := p.validate.Struct(charge); err != nil {
		return nil, domainErrors.NewMalformedPayloadError(fmt.Errorf("invalid charge data: %w", err))
	}
	if _, err := charge.ParsePaidAt(); err != nil {
		return nil, domainErrors.NewMalformedPayloadError(fmt.Errorf("%w: %v", domainErrors.ErrInvalidPaidAt, err))
	}

	event.Reference = charge.Reference
	event.Charge = &charge
	return event, nil
}

// peekReference reads data.reference from events this service does not act on
func peekReference(data json.RawMessage) string {
	var peek struct {
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return ""
	}
	return peek.Reference
}
