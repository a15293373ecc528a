package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GetSettings returns the user's raw settings document, creating it with
// the default subscription on first access. Raw because clients may store
// free-form preference keys alongside the typed fields.
func GetSettings(ctx context.Context, userID, email string) (bson.M, error) {
	if _, err := GetOrCreateSubscription(ctx, userID, email); err != nil {
		return nil, err
	}

	var settings bson.M
	err := collection(userSettingsCollection).
		FindOne(ctx, bson.M{"user_id": userID}).
		Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	delete(settings, "_id")
	return settings, nil
}

// protectedSettingsKeys are fields a settings merge may never touch. The
// ledger only moves through the subscription operations.
var protectedSettingsKeys = map[string]bool{
	"_id":          true,
	"user_id":      true,
	"email":        true,
	"subscription": true,
	"created_at":   true,
	"updated_at":   true,
}

// ErrNoUpdatableFields is returned when a merge contains only protected keys.
var ErrNoUpdatableFields = errors.New("no updatable fields")

// UpdateSettings $set-merges preference keys into the settings document.
// Protected fields are silently dropped; the ledger is not settable here.
func UpdateSettings(ctx context.Context, userID string, updates map[string]any) (bson.M, error) {
	set := bson.M{"updated_at": time.Now()}
	for k, v := range updates {
		if protectedSettingsKeys[k] || strings.HasPrefix(k, "subscription.") || strings.Contains(k, "$") {
			continue
		}
		set[k] = v
	}
	if len(set) == 1 {
		return nil, ErrNoUpdatableFields
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var settings bson.M
	err := collection(userSettingsCollection).
		FindOneAndUpdate(ctx, bson.M{"user_id": userID}, bson.M{"$set": set}, opts).
		Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	delete(settings, "_id")
	return settings, nil
}

// DeleteSettingsForUser removes the user's settings document, ledger included.
func DeleteSettingsForUser(ctx context.Context, userID string) error {
	if _, err := collection(userSettingsCollection).DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}
