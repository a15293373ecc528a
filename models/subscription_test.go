package models

import (
	"testing"
	"time"
)

func TestMeterMinutes(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"ninety seconds", 90 * time.Second, 1.50},
		{"one minute", time.Minute, 1.00},
		{"sub-second floors to minimum", 100 * time.Millisecond, 0.01},
		{"zero", 0, 0},
		{"negative", -time.Minute, 0},
		{"rounds to hundredths", 61 * time.Second, 1.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeterMinutes(tt.elapsed); got != tt.want {
				t.Errorf("MeterMinutes(%v) = %v, want %v", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestRoundMinutes(t *testing.T) {
	if got := RoundMinutes(1.236); got != 1.24 {
		t.Errorf("RoundMinutes(1.236) = %v, want 1.24", got)
	}
	if got := RoundMinutes(2.994); got != 2.99 {
		t.Errorf("RoundMinutes(2.994) = %v, want 2.99", got)
	}
}

func TestValidMinutes(t *testing.T) {
	for _, bad := range []float64{0, -1} {
		if ValidMinutes(bad) {
			t.Errorf("ValidMinutes(%v) = true, want false", bad)
		}
	}
	if !ValidMinutes(0.01) {
		t.Error("ValidMinutes(0.01) = false, want true")
	}
}

func TestNewDefaultSubscription(t *testing.T) {
	sub := NewDefaultSubscription()
	if sub.PlanID != FreePlanID {
		t.Errorf("plan = %q, want %q", sub.PlanID, FreePlanID)
	}
	if sub.BalanceMinutes != DefaultFreeMinutes {
		t.Errorf("balance = %v, want %v", sub.BalanceMinutes, DefaultFreeMinutes)
	}
	if sub.TotalMinutesGranted != DefaultFreeMinutes {
		t.Errorf("granted = %v, want %v", sub.TotalMinutesGranted, DefaultFreeMinutes)
	}
	if sub.LastPurchaseAt != nil {
		t.Error("free seed should not record a purchase")
	}
}

func TestSummaryClampsNegativeBalance(t *testing.T) {
	sub := SubscriptionState{PlanID: "plus", BalanceMinutes: -3}
	got := sub.Summary()
	if got.BalanceMinutes != 0 {
		t.Errorf("balance = %v, want 0", got.BalanceMinutes)
	}
	if got.BalanceHours != 0 {
		t.Errorf("hours = %v, want 0", got.BalanceHours)
	}
}

func TestSummaryHoursRounded(t *testing.T) {
	sub := SubscriptionState{BalanceMinutes: 100}
	got := sub.Summary()
	if got.BalanceHours != 1.67 {
		t.Errorf("hours = %v, want 1.67", got.BalanceHours)
	}
}

func TestTotalMinutesForPlan(t *testing.T) {
	tests := []struct {
		planID string
		want   float64
	}{
		{"basic", 180},
		{"plus", 480},
		{"advanced", 780},
	}

	for _, tt := range tests {
		t.Run(tt.planID, func(t *testing.T) {
			plan := PlanByID(tt.planID)
			if plan == nil {
				t.Fatalf("plan %q not found", tt.planID)
			}
			if got := TotalMinutesForPlan(*plan); got != tt.want {
				t.Errorf("minutes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanByIDUnknown(t *testing.T) {
	if PlanByID("enterprise") != nil {
		t.Error("unknown plan should return nil")
	}
	if PlanByID("") != nil {
		t.Error("empty plan id should return nil")
	}
}
