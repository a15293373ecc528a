package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"interview-copilot/api/models"
)

func TestMergeLegacySubscriptionPreservesBalance(t *testing.T) {
	seed := models.NewDefaultSubscription()
	now := time.Now()

	got := mergeLegacySubscription(bson.M{
		"balance_minutes":        100.0,
		"total_minutes_granted":  183.0,
		"total_minutes_consumed": 83.0,
		"plan_id":                "plus",
	}, seed, now)

	if got.BalanceMinutes != 100 {
		t.Errorf("BalanceMinutes = %v, want 100", got.BalanceMinutes)
	}
	if got.PlanID != "plus" {
		t.Errorf("PlanID = %q, want %q", got.PlanID, "plus")
	}
	if got.TotalMinutesGranted != 183 {
		t.Errorf("TotalMinutesGranted = %v, want 183", got.TotalMinutesGranted)
	}
	if got.TotalMinutesConsumed != 83 {
		t.Errorf("TotalMinutesConsumed = %v, want 83", got.TotalMinutesConsumed)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestMergeLegacySubscriptionMissingFields(t *testing.T) {
	seed := models.NewDefaultSubscription()

	got := mergeLegacySubscription(bson.M{}, seed, time.Now())

	if got.BalanceMinutes != models.DefaultFreeMinutes {
		t.Errorf("BalanceMinutes = %v, want %v", got.BalanceMinutes, models.DefaultFreeMinutes)
	}
	if got.TotalMinutesGranted != models.DefaultFreeMinutes {
		t.Errorf("TotalMinutesGranted = %v, want %v", got.TotalMinutesGranted, models.DefaultFreeMinutes)
	}
	if got.PlanID != models.FreePlanID {
		t.Errorf("PlanID = %q, want %q", got.PlanID, models.FreePlanID)
	}
	if got.LastPurchaseAt != nil {
		t.Errorf("LastPurchaseAt = %v, want nil", got.LastPurchaseAt)
	}
}

func TestMergeLegacySubscriptionClampsNegativeBalance(t *testing.T) {
	seed := models.NewDefaultSubscription()

	got := mergeLegacySubscription(bson.M{
		"balance_minutes": -3.5,
	}, seed, time.Now())

	if got.BalanceMinutes != 0 {
		t.Errorf("BalanceMinutes = %v, want 0", got.BalanceMinutes)
	}
}

func TestMergeLegacySubscriptionKeepsSmallBalance(t *testing.T) {
	// A balance below the free seed is legitimate spending, not a grant to
	// restore.
	seed := models.NewDefaultSubscription()

	got := mergeLegacySubscription(bson.M{
		"balance_minutes": 1.5,
	}, seed, time.Now())

	if got.BalanceMinutes != 1.5 {
		t.Errorf("BalanceMinutes = %v, want 1.5", got.BalanceMinutes)
	}
}

func TestMergeLegacySubscriptionDecodedTypes(t *testing.T) {
	// Drivers hand back int32/int64 for whole numbers and bson.DateTime for
	// timestamps; the merge must read them all.
	seed := models.NewDefaultSubscription()
	purchased := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got := mergeLegacySubscription(bson.M{
		"balance_minutes":  int32(42),
		"last_purchase_at": bson.NewDateTimeFromTime(purchased),
	}, seed, time.Now())

	if got.BalanceMinutes != 42 {
		t.Errorf("BalanceMinutes = %v, want 42", got.BalanceMinutes)
	}
	if got.LastPurchaseAt == nil || !got.LastPurchaseAt.Equal(purchased) {
		t.Errorf("LastPurchaseAt = %v, want %v", got.LastPurchaseAt, purchased)
	}
}
