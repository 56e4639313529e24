// internal/domain/models/waitlistentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WaitlistEntry is a queued join request for a full group. Queue order is
// created_at ascending, ties broken by _id (insertion order).
// An entry is deleted when the user is promoted, withdraws, or the group
// closes; there is no soft-delete state.
type WaitlistEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
