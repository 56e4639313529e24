// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a platform account.
//
// NOTE:
//   - Group membership is not embedded on User. Use the group_memberships
//     collection to discover a user's groups.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	// Attributes matched against Group requirements during enrollment.
	Positions []string `bson:"positions,omitempty" json:"positions,omitempty"`
	Skills    []string `bson:"skills,omitempty" json:"skills,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
