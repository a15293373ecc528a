package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// VoiceProfile records a voice clone created at the vendor on behalf of a
// user. VendorVoiceID is the vendor's identifier; rename/delete mirror to
// the vendor best-effort.
type VoiceProfile struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string        `bson:"user_id" json:"userId"`
	UserName      string        `bson:"user_name" json:"userName"`
	VendorVoiceID string        `bson:"vendor_voice_id" json:"voiceId"`
	Name          string        `bson:"name" json:"name"`
	CreatedAt     time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updatedAt"`
}
