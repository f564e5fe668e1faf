package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Event kinds acted upon. Everything else is acknowledged and ignored.
const (
	EventChargeSuccess = "charge.success"
)

// Event is the Paystack webhook envelope.
type Event struct {
	Kind string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// ChargeData is the data object of a charge.success event.
type ChargeData struct {
	Reference string          `json:"reference" validate:"required"`
	PaidAt    string          `json:"paid_at" validate:"required"`
	Channel   string          `json:"channel"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  ChargeCustomer  `json:"customer"`
	Metadata  ChargeMetadata  `json:"metadata"`
}

type ChargeCustomer struct {
	Email string `json:"email"`
}

type ChargeMetadata struct {
	UserID   string `json:"userId" validate:"required"`
	PlanID   string `json:"planId" validate:"required"`
	PlanName string `json:"planName"`
	Role     string `json:"role"`
}

// ParsePaidAt parses paid_at as RFC 3339, fractional seconds allowed.
func (d ChargeData) ParsePaidAt() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, d.PaidAt)
}

// MajorAmount converts the minor-unit amount (kobo, cents) into currency units.
func (d ChargeData) MajorAmount() float64 {
	return d.Amount.Shift(-2).InexactFloat64()
}
