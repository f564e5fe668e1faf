package entity

import (
	"strings"
	"time"
)

// PlanClass maps a planId substring to a subscription length in days.
type PlanClass struct {
	Keyword string
	Days    int
}

// PlanPolicy resolves subscription length from a plan identifier.
// Classes are tried in order and the first case-insensitive substring match wins.
type PlanPolicy struct {
	Classes     []PlanClass
	DefaultDays int
}

func DefaultPlanPolicy() PlanPolicy {
	return PlanPolicy{
		Classes: []PlanClass{
			{Keyword: "daily", Days: 1},
			{Keyword: "monthly", Days: 30},
			{Keyword: "annual", Days: 365},
		},
		DefaultDays: 30,
	}
}

// Resolve returns the duration in days for planID.
func (p PlanPolicy) Resolve(planID string) int {
	id := strings.ToLower(planID)
	for _, class := range p.Classes {
		if class.Keyword != "" && strings.Contains(id, strings.ToLower(class.Keyword)) {
			return class.Days
		}
	}
	return p.DefaultDays
}

// ExpiresAt adds the resolved number of calendar days to paidAt, in UTC.
func (p PlanPolicy) ExpiresAt(planID string, paidAt time.Time) time.Time {
	return paidAt.UTC().AddDate(0, 0, p.Resolve(planID))
}
