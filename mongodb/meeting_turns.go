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

const (
	defaultTurnLimit = 50
	maxTurnLimit     = 200
)

// InsertMeetingTurn stores a new question turn with an empty answer.
func InsertMeetingTurn(ctx context.Context, turn *models.MeetingTurn) (string, error) {
	now := time.Now()
	turn.CreatedAt = now
	turn.UpdatedAt = now
	if turn.AskedAt.IsZero() {
		turn.AskedAt = now
	}

	res, err := collection(meetingTurnsCollection).InsertOne(ctx, turn)
	if err != nil {
		return "", fmt.Errorf("failed to insert meeting turn: %w", err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", res.InsertedID)
	}
	turn.ID = id
	return id.Hex(), nil
}

// SetTurnAnswer fills in the completed answer for a turn the user owns.
func SetTurnAnswer(ctx context.Context, userID, turnID, answer string) error {
	oid, err := bson.ObjectIDFromHex(turnID)
	if err != nil {
		return ErrNotFound
	}

	now := time.Now()
	res, err := collection(meetingTurnsCollection).UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID},
		bson.M{"$set": bson.M{"answer": answer, "answered_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update meeting turn: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TurnFilter narrows a history listing.
type TurnFilter struct {
	SessionID string
	ProfileID string
	Limit     int
}

// ListMeetingTurns returns the most recent turns for a user, optionally
// filtered by session or profile, re-sorted oldest first so the client can
// render the conversation top-down. Limit <= 0 uses the default; the cap
// bounds worst-case payloads.
func ListMeetingTurns(ctx context.Context, userID string, f TurnFilter) ([]models.MeetingTurn, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultTurnLimit
	}
	if limit > maxTurnLimit {
		limit = maxTurnLimit
	}

	filter := bson.M{"user_id": userID}
	if f.SessionID != "" {
		filter["session_id"] = f.SessionID
	}
	if f.ProfileID != "" {
		filter["profile_id"] = f.ProfileID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection(meetingTurnsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting turns: %w", err)
	}
	defer cursor.Close(ctx)

	var turns []models.MeetingTurn
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode meeting turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// GetMeetingTurn fetches one turn scoped to its owner.
func GetMeetingTurn(ctx context.Context, userID, turnID string) (*models.MeetingTurn, error) {
	oid, err := bson.ObjectIDFromHex(turnID)
	if err != nil {
		return nil, ErrNotFound
	}

	var turn models.MeetingTurn
	err = collection(meetingTurnsCollection).
		FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).
		Decode(&turn)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting turn: %w", err)
	}
	return &turn, nil
}

// DeleteMeetingTurnsForUser removes all of a user's turns. Used by account deletion.
func DeleteMeetingTurnsForUser(ctx context.Context, userID string) (int64, error) {
	res, err := collection(meetingTurnsCollection).DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete meeting turns: %w", err)
	}
	return res.DeletedCount, nil
}
