package mongodb

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"interview-copilot/api/logger"
)

const (
	databaseName = "interview_coach"

	profilesCollection      = "copilot_profiles"
	meetingTurnsCollection  = "meeting_turns"
	voiceProfilesCollection = "voice_profiles"
	userSettingsCollection  = "user_settings"

	defaultTimeout = 10 * time.Second
)

var client *mongo.Client

// InitMongoDB connects using MONGODB_URI and pings the deployment. Must be
// called before any repository function.
func InitMongoDB() error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return fmt.Errorf("MONGODB_URI environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	client = c
	logger.Get().Info("Connected to MongoDB", zap.String("database", databaseName))
	return nil
}

// CloseMongoDB disconnects the shared client.
func CloseMongoDB() {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Get().Error("Error disconnecting from MongoDB", zap.Error(err))
	}
}

func collection(name string) *mongo.Collection {
	return client.Database(databaseName).Collection(name)
}
