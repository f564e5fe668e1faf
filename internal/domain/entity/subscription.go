package entity

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

// Subscription is the sub-document stored under users/{userId}.subscription.
// Ledger entries carry the same fields plus the payer email.
type Subscription struct {
	Status    SubscriptionStatus `json:"status" bson:"status"`
	PlanID    string             `json:"planId" bson:"planId"`
	PlanName  string             `json:"planName" bson:"planName"`
	PaidAt    time.Time          `json:"paidAt" bson:"paidAt"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	Reference string             `json:"reference" bson:"reference"`
	Channel   string             `json:"channel" bson:"channel"`
	Amount    float64            `json:"amount" bson:"amount"`
	Currency  string             `json:"currency" bson:"currency"`
	UserID    string             `json:"userId" bson:"userId"`
}

func (s Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// IsExpiredAt reports whether an active subscription has passed its expiry at now.
func (s Subscription) IsExpiredAt(now time.Time) bool {
	return s.IsActive() && !s.ExpiresAt.After(now)
}

// LedgerEntry is the standalone per-transaction record keyed by Reference.
type LedgerEntry struct {
	Subscription `bson:",inline"`
	Email        string `json:"email" bson:"email"`
}

// ExpiredSubscription is a sweep candidate. ID is the user id for profile
// sweeps and the reference for ledger sweeps.
type ExpiredSubscription struct {
	ID        string
	UserID    string
	PlanID    string
	ExpiresAt time.Time
}
