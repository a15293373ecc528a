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

// InsertVoiceProfile stores a new voice clone record.
func InsertVoiceProfile(ctx context.Context, vp *models.VoiceProfile) (string, error) {
	now := time.Now()
	vp.CreatedAt = now
	vp.UpdatedAt = now

	res, err := collection(voiceProfilesCollection).InsertOne(ctx, vp)
	if err != nil {
		return "", fmt.Errorf("failed to insert voice profile: %w", err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	vp.ID = id
	return id.Hex(), nil
}

// ListVoiceProfiles returns the user's voice clones, newest first.
func ListVoiceProfiles(ctx context.Context, userID string) ([]models.VoiceProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection(voiceProfilesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.VoiceProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode voice profiles: %w", err)
	}
	return profiles, nil
}

// GetVoiceProfile fetches one voice clone scoped to its owner.
func GetVoiceProfile(ctx context.Context, userID, voiceProfileID string) (*models.VoiceProfile, error) {
	oid, err := bson.ObjectIDFromHex(voiceProfileID)
	if err != nil {
		return nil, ErrNotFound
	}

	var vp models.VoiceProfile
	err = collection(voiceProfilesCollection).
		FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).
		Decode(&vp)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voice profile: %w", err)
	}
	return &vp, nil
}

// RenameVoiceProfile updates the display name of a voice clone.
func RenameVoiceProfile(ctx context.Context, userID, voiceProfileID, name string) error {
	oid, err := bson.ObjectIDFromHex(voiceProfileID)
	if err != nil {
		return ErrNotFound
	}

	res, err := collection(voiceProfilesCollection).UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to rename voice profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVoiceProfile removes a voice clone record scoped to its owner.
func DeleteVoiceProfile(ctx context.Context, userID, voiceProfileID string) error {
	oid, err := bson.ObjectIDFromHex(voiceProfileID)
	if err != nil {
		return ErrNotFound
	}

	res, err := collection(voiceProfilesCollection).DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete voice profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteVoiceProfilesForUser removes all of a user's voice clones and returns
// the vendor voice IDs so callers can clean up at the vendor too.
func DeleteVoiceProfilesForUser(ctx context.Context, userID string) ([]string, error) {
	profiles, err := ListVoiceProfiles(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := collection(voiceProfilesCollection).DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return nil, fmt.Errorf("failed to delete voice profiles: %w", err)
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.VendorVoiceID != "" {
			ids = append(ids, p.VendorVoiceID)
		}
	}
	return ids, nil
}
