package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MeetingTurn is one question/answer pair inside a capture session. The
// answer starts empty and is filled once the streamed completion finishes.
// Turns are never deleted by the application.
type MeetingTurn struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string        `bson:"user_id" json:"userId"`
	SessionID  string        `bson:"session_id" json:"sessionId"`
	ProfileID  string        `bson:"profile_id" json:"profileId"`
	Order      *int          `bson:"order,omitempty" json:"order"`
	Question   string        `bson:"question" json:"question"`
	Answer     string        `bson:"answer" json:"answer"`
	AskedAt    time.Time     `bson:"asked_at" json:"askedAt"`
	AnsweredAt *time.Time    `bson:"answered_at,omitempty" json:"answeredAt"`
	CreatedAt  time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updatedAt"`
}
