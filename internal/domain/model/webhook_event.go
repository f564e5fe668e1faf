package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusProcessing WebhookStatus = "processing"
	WebhookStatusCompleted  WebhookStatus = "completed"
	WebhookStatusFailed     WebhookStatus = "failed"
)

// Scan implements sql.Scanner interface
func (w *WebhookStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*w = WebhookStatus(v)
	case []byte:
		*w = WebhookStatus(v)
	default:
		*w = WebhookStatusProcessing
	}
	return nil
}

// Value implements driver.Valuer interface
func (w WebhookStatus) Value() (driver.Value, error) {
	return string(w), nil
}

// Payload holds the raw webhook body in a jsonb column
type Payload json.RawMessage

func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

func (p *Payload) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append((*p)[:0], v...)
	case string:
		*p = Payload(v)
	}
	return nil
}

// PaystackWebhookEvent is one received delivery, keyed by "event:reference"
type PaystackWebhookEvent struct {
	ID                 int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	DeliveryKey        string        `gorm:"unique;not null;size:255;index" json:"delivery_key"`
	EventType          string        `gorm:"not null;size:100;index" json:"event_type"`
	Reference          string        `gorm:"size:255;index" json:"reference"`
	Status             WebhookStatus `gorm:"size:20;default:'processing';index" json:"status"`
	Data               Payload       `gorm:"type:jsonb" json:"data"`
	ProcessingAttempts int           `gorm:"default:1" json:"processing_attempts"`
	LastError          *string       `json:"last_error,omitempty"`
	ProcessedAt        *time.Time    `json:"processed_at,omitempty"`
	CreatedAt          time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (PaystackWebhookEvent) TableName() string {
	return "paystack_webhook_events"
}
