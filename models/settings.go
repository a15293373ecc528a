package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserSettings is the per-user settings document. The minute ledger lives
// here as a subdocument so balance reads and preference reads share a fetch.
type UserSettings struct {
	ID             bson.ObjectID     `bson:"_id,omitempty" json:"-"`
	UserID         string            `bson:"user_id" json:"userId"`
	Email          string            `bson:"email,omitempty" json:"email,omitempty"`
	DefaultVoiceID string            `bson:"default_voice_id,omitempty" json:"defaultVoiceId,omitempty"`
	AnswerStyle    string            `bson:"answer_style,omitempty" json:"answerStyle,omitempty"`
	Subscription   SubscriptionState `bson:"subscription" json:"subscription"`
	CreatedAt      time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updatedAt"`
}
