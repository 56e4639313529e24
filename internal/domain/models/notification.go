// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a persisted enrollment event awaiting delivery. The
// delivery transport (email/push/websocket) reads these; this service only
// writes them.
type Notification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID string             `bson:"event_id" json:"event_id"` // stable id handed to delivery
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	Type    string             `bson:"type" json:"type"`             // admitted, waitlisted, promoted, rejected, approval_pending
	Reason  string             `bson:"reason,omitempty" json:"reason,omitempty"`
	IsRead  bool               `bson:"is_read" json:"is_read"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
