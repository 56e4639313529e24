// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a capacity-bounded team that users enroll into.
//
// NOTE:
//   - Member and waitlist rows are not embedded on Group. Membership lives in
//     the group_memberships collection; queued candidates live in
//     waitlist_entries. Seat counts are always derived from group_memberships.
//   - MaxParticipants is immutable for the lifetime of enrollment.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	MaxParticipants int  `bson:"max_participants" json:"max_participants"`
	AutoAllow       bool `bson:"auto_allow" json:"auto_allow"`

	// Requirements a candidate must meet to enroll. Empty slices mean the
	// dimension is unconstrained.
	Positions []string `bson:"positions,omitempty" json:"positions,omitempty"`
	Skills    []string `bson:"skills,omitempty" json:"skills,omitempty"`

	Status string `bson:"status" json:"status"` // "open" | "closed"

	// Enrollment window. Deadline gates new join requests; EndDate gates
	// promotions as well.
	Deadline  *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`
	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
