package mongodb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
	"interview-copilot/api/models"
)

// ErrInsufficientBalance is returned when a consume would overdraw the
// ledger. The balance is left untouched.
var ErrInsufficientBalance = errors.New("insufficient minute balance")

// GetOrCreateSubscription returns the user's ledger, seeding the free grant
// exactly once on first read. The seed uses $setOnInsert so concurrent first
// reads cannot double-grant.
func GetOrCreateSubscription(ctx context.Context, userID, email string) (*models.SubscriptionState, error) {
	now := time.Now()
	seed := models.NewDefaultSubscription()

	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":      userID,
			"email":        email,
			"subscription": seed,
			"created_at":   now,
		},
		"$set": bson.M{"updated_at": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var settings models.UserSettings
	err := collection(userSettingsCollection).
		FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).
		Decode(&settings)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	// Documents written before the ledger existed decode to a zero
	// subscription. Reconcile them to the free seed once.
	if settings.Subscription.CreatedAt.IsZero() {
		sub, rerr := reconcileSubscription(ctx, userID, seed)
		if rerr != nil {
			return nil, rerr
		}
		return sub, nil
	}

	return &settings.Subscription, nil
}

func reconcileSubscription(ctx context.Context, userID string, seed models.SubscriptionState) (*models.SubscriptionState, error) {
	// Read the raw subdocument first: a decoded struct cannot tell a stored
	// zero from a missing field, and the merge must only fill in the gaps.
	var doc struct {
		Subscription bson.M `bson:"subscription"`
	}
	err := collection(userSettingsCollection).
		FindOne(ctx, bson.M{"user_id": userID}).
		Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile subscription: %w", err)
	}

	merged := mergeLegacySubscription(doc.Subscription, seed, time.Now())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var settings models.UserSettings
	err = collection(userSettingsCollection).
		FindOneAndUpdate(ctx,
			bson.M{"user_id": userID, "subscription.created_at": bson.M{"$exists": false}},
			bson.M{"$set": bson.M{"subscription": merged, "updated_at": merged.UpdatedAt}},
			opts,
		).
		Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Another request reconciled first; re-read.
		err = collection(userSettingsCollection).
			FindOne(ctx, bson.M{"user_id": userID}).
			Decode(&settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile subscription: %w", err)
	}

	logger.Get().Info("Reconciled legacy subscription record", zap.String("user_id", userID))
	return &settings.Subscription, nil
}

// mergeLegacySubscription folds an existing subscription subdocument over the
// default seed. Stored fields win: a legacy balance of 100 stays 100, a plan
// id survives, and last_purchase_at is carried over. Missing fields take the
// seed values, and numeric fields are clamped so a malformed negative balance
// comes back as zero rather than an overdraft.
func mergeLegacySubscription(raw bson.M, seed models.SubscriptionState, now time.Time) models.SubscriptionState {
	out := seed
	out.CreatedAt = now
	out.UpdatedAt = now

	if v, ok := numericField(raw, "balance_minutes"); ok {
		out.BalanceMinutes = math.Max(v, 0)
	}
	if v, ok := numericField(raw, "total_minutes_granted"); ok {
		out.TotalMinutesGranted = math.Max(v, 0)
	}
	if v, ok := numericField(raw, "total_minutes_consumed"); ok {
		out.TotalMinutesConsumed = math.Max(v, 0)
	}
	if s, ok := raw["plan_id"].(string); ok && s != "" {
		out.PlanID = s
	}
	if t, ok := timeField(raw, "last_purchase_at"); ok {
		out.LastPurchaseAt = &t
	}
	return out
}

func numericField(raw bson.M, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func timeField(raw bson.M, key string) (time.Time, bool) {
	switch v := raw[key].(type) {
	case time.Time:
		return v, true
	case bson.DateTime:
		return v.Time(), true
	}
	return time.Time{}, false
}

// AddMinutes credits the ledger atomically. When planID names a purchased
// plan the grant records its provenance (plan_id, last_purchase_at).
func AddMinutes(ctx context.Context, userID string, minutes float64, planID string) (*models.SubscriptionState, error) {
	if !models.ValidMinutes(minutes) {
		return nil, fmt.Errorf("invalid minute grant: %v", minutes)
	}

	now := time.Now()
	minutes = models.RoundMinutes(minutes)

	set := bson.M{
		"subscription.updated_at": now,
		"updated_at":              now,
	}
	if planID != "" && planID != models.FreePlanID {
		set["subscription.plan_id"] = planID
		set["subscription.last_purchase_at"] = now
	}

	update := bson.M{
		"$inc": bson.M{
			"subscription.balance_minutes":       minutes,
			"subscription.total_minutes_granted": minutes,
		},
		"$set": set,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var settings models.UserSettings
	err := collection(userSettingsCollection).
		FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).
		Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add minutes: %w", err)
	}

	logger.Get().Info("Credited minutes",
		zap.String("user_id", userID),
		zap.Float64("minutes", minutes),
		zap.String("plan_id", planID))
	return &settings.Subscription, nil
}

// ConsumeMinutes debits the ledger atomically. The filter requires the
// balance to cover the debit, so two concurrent consumes can never overdraw;
// the losing request gets ErrInsufficientBalance.
func ConsumeMinutes(ctx context.Context, userID string, minutes float64) (*models.SubscriptionState, error) {
	if !models.ValidMinutes(minutes) {
		return nil, fmt.Errorf("invalid minute debit: %v", minutes)
	}

	now := time.Now()
	minutes = models.RoundMinutes(minutes)
	if minutes < models.MinConsumeIncrement {
		minutes = models.MinConsumeIncrement
	}

	filter := bson.M{
		"user_id":                      userID,
		"subscription.balance_minutes": bson.M{"$gte": minutes},
	}
	update := bson.M{
		"$inc": bson.M{
			"subscription.balance_minutes":        -minutes,
			"subscription.total_minutes_consumed": minutes,
		},
		"$set": bson.M{
			"subscription.updated_at": now,
			"updated_at":              now,
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var settings models.UserSettings
	err := collection(userSettingsCollection).
		FindOneAndUpdate(ctx, filter, update, opts).
		Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish "no ledger" from "not enough balance".
		count, cerr := collection(userSettingsCollection).CountDocuments(ctx, bson.M{"user_id": userID})
		if cerr == nil && count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientBalance
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume minutes: %w", err)
	}

	return &settings.Subscription, nil
}
