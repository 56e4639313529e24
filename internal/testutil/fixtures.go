package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given attributes.
func (f *Fixtures) CreateUser(ctx context.Context, fullName string, positions, skills []string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      text.Fold(fullName) + "@test.com",
		Status:     status.Active,
		Positions:  positions,
		Skills:     skills,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateGroup creates an open test group with the given capacity and
// auto-allow policy and no position/skill requirements.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, maxParticipants int, autoAllow bool) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:              primitive.NewObjectID(),
		Name:            name,
		NameCI:          text.Fold(name),
		OwnerID:         primitive.NewObjectID(),
		MaxParticipants: maxParticipants,
		AutoAllow:       autoAllow,
		Status:          status.Open,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("groups").InsertOne(ctx, group)
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	return group
}

// CreateMembership inserts a membership row directly, bypassing the engine.
func (f *Fixtures) CreateMembership(ctx context.Context, groupID, userID primitive.ObjectID) models.GroupMembership {
	f.t.Helper()

	m := models.GroupMembership{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := f.db.Collection("group_memberships").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateWaitlistEntry inserts a waitlist row directly with the given
// enqueue time, bypassing the engine.
func (f *Fixtures) CreateWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID, at time.Time) models.WaitlistEntry {
	f.t.Helper()

	e := models.WaitlistEntry{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: at,
	}
	_, err := f.db.Collection("waitlist_entries").InsertOne(ctx, e)
	if err != nil {
		f.t.Fatalf("failed to create test waitlist entry: %v", err)
	}
	return e
}
