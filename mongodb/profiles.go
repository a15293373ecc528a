package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"interview-copilot/api/models"
)

// ErrNotFound is returned when a document does not exist or belongs to a
// different user. Handlers map it to 404 without distinguishing the two.
var ErrNotFound = errors.New("document not found")

// InsertProfile stores a new copilot profile and returns its assigned ID.
func InsertProfile(ctx context.Context, p *models.CopilotProfile) (string, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := collection(profilesCollection).InsertOne(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to insert profile: %w", err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	p.ID = id
	return id.Hex(), nil
}

const maxProfileList = 25

// ListProfiles returns the user's profiles, newest first, capped so the
// listing payload stays bounded even with inline upload blobs in the store.
func ListProfiles(ctx context.Context, userID string) ([]models.CopilotProfile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(maxProfileList)
	cursor, err := collection(profilesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.CopilotProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

// GetProfile fetches one profile scoped to its owner.
func GetProfile(ctx context.Context, userID, profileID string) (*models.CopilotProfile, error) {
	oid, err := bson.ObjectIDFromHex(profileID)
	if err != nil {
		return nil, ErrNotFound
	}

	var profile models.CopilotProfile
	err = collection(profilesCollection).
		FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).
		Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// RenameProfile updates only the profile name. Document content is immutable.
func RenameProfile(ctx context.Context, userID, profileID, name string) error {
	oid, err := bson.ObjectIDFromHex(profileID)
	if err != nil {
		return ErrNotFound
	}

	res, err := collection(profilesCollection).UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"profile_name": name, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to rename profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProfile removes one profile scoped to its owner.
func DeleteProfile(ctx context.Context, userID, profileID string) error {
	oid, err := bson.ObjectIDFromHex(profileID)
	if err != nil {
		return ErrNotFound
	}

	res, err := collection(profilesCollection).DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProfilesForUser removes all of a user's profiles. Used by account deletion.
func DeleteProfilesForUser(ctx context.Context, userID string) (int64, error) {
	res, err := collection(profilesCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete profiles: %w", err)
	}
	return res.DeletedCount, nil
}
