package models

import (
	"math"
	"time"
)

const (
	MinutesPerHour = 60

	// DefaultFreeMinutes is granted once, when a user's ledger is first created.
	DefaultFreeMinutes = 5.0

	// MinConsumeIncrement floors metered consumption so a very short capture
	// still produces a nonzero deduction.
	MinConsumeIncrement = 0.01

	FreePlanID = "free"
)

// SubscriptionState is the per-user minute ledger, embedded in the user's
// settings document. BalanceMinutes never goes negative: consumption that
// would overdraw is rejected, not clamped.
type SubscriptionState struct {
	PlanID               string     `bson:"plan_id" json:"planId"`
	BalanceMinutes       float64    `bson:"balance_minutes" json:"balanceMinutes"`
	TotalMinutesGranted  float64    `bson:"total_minutes_granted" json:"totalMinutesGranted"`
	TotalMinutesConsumed float64    `bson:"total_minutes_consumed" json:"totalMinutesConsumed"`
	LastPurchaseAt       *time.Time `bson:"last_purchase_at" json:"lastPurchaseAt"`
	CreatedAt            time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updated_at" json:"updatedAt"`
}

// SubscriptionSummary is the client-facing view of the ledger.
type SubscriptionSummary struct {
	PlanID               string     `json:"planId"`
	BalanceMinutes       float64    `json:"balanceMinutes"`
	BalanceHours         float64    `json:"balanceHours"`
	TotalMinutesGranted  float64    `json:"totalMinutesGranted"`
	TotalMinutesConsumed float64    `json:"totalMinutesConsumed"`
	LastPurchaseAt       *time.Time `json:"lastPurchaseAt"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func NewDefaultSubscription() SubscriptionState {
	now := time.Now()
	return SubscriptionState{
		PlanID:              FreePlanID,
		BalanceMinutes:      DefaultFreeMinutes,
		TotalMinutesGranted: DefaultFreeMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Summary normalises the state for the client: balance is never reported
// negative and hours are rounded to two decimals.
func (s SubscriptionState) Summary() SubscriptionSummary {
	balance := math.Max(s.BalanceMinutes, 0)
	return SubscriptionSummary{
		PlanID:               s.PlanID,
		BalanceMinutes:       balance,
		BalanceHours:         RoundMinutes(balance / MinutesPerHour),
		TotalMinutesGranted:  math.Max(s.TotalMinutesGranted, 0),
		TotalMinutesConsumed: math.Max(s.TotalMinutesConsumed, 0),
		LastPurchaseAt:       s.LastPurchaseAt,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

// RoundMinutes rounds to the ledger's fixed precision (hundredths of a minute).
func RoundMinutes(minutes float64) float64 {
	return math.Round(minutes*100) / 100
}

// MeterMinutes converts elapsed capture time into a consumable increment:
// rounded to hundredths and floored at the minimum nonzero increment.
func MeterMinutes(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	minutes := RoundMinutes(elapsed.Minutes())
	if minutes < MinConsumeIncrement {
		return MinConsumeIncrement
	}
	return minutes
}

// ValidMinutes reports whether m is a usable ledger delta.
func ValidMinutes(m float64) bool {
	return !math.IsNaN(m) && !math.IsInf(m, 0) && m > 0
}
