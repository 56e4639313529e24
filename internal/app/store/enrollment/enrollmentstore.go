// internal/app/store/enrollment/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateMembership is returned when a membership insert hits the
// unique (group_id, user_id) index. Under the engine's per-group lock this
// indicates a caller bug, not a race.
var ErrDuplicateMembership = errors.New("user is already a member of this group")

// ErrDuplicateWaitlistEntry is the waitlist counterpart.
var ErrDuplicateWaitlistEntry = errors.New("user is already waitlisted for this group")

// Store is the mongo implementation of the engine's persistence boundary
// (enroll.Store). It spans the groups, users, group_memberships, and
// waitlist_entries collections.
type Store struct {
	groups      *mongo.Collection
	users       *mongo.Collection
	memberships *mongo.Collection
	waitlist    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		groups:      db.Collection("groups"),
		users:       db.Collection("users"),
		memberships: db.Collection("group_memberships"),
		waitlist:    db.Collection("waitlist_entries"),
	}
}

func (s *Store) LoadGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.groups.FindOne(ctx, bson.M{"_id": groupID}).Decode(&g); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Group{}, enroll.ErrGroupNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) LoadUser(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.User{}, enroll.ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *Store) MemberCount(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	n, err := s.memberships.CountDocuments(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	err := s.memberships.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertMember(ctx context.Context, groupID, userID primitive.ObjectID, promoted bool) error {
	doc := bson.M{
		"group_id":   groupID,
		"user_id":    userID,
		"promoted":   promoted,
		"created_at": time.Now().UTC(),
	}
	if _, err := s.memberships.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	res, err := s.memberships.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) IsWaitlisted(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	err := s.waitlist.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadWaitlist returns the queue in FIFO order: created_at ascending, _id
// ascending as the stable tie-break.
func (s *Store) LoadWaitlist(ctx context.Context, groupID primitive.ObjectID) ([]models.WaitlistEntry, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.waitlist.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.WaitlistEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) InsertWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID, at time.Time) error {
	doc := bson.M{
		"group_id":   groupID,
		"user_id":    userID,
		"created_at": at,
	}
	if _, err := s.waitlist.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateWaitlistEntry
		}
		return err
	}
	return nil
}

func (s *Store) DeleteWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	res, err := s.waitlist.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListSweepableGroupIDs returns the open auto-allow groups that currently
// have queued candidates. The periodic sweeper walks this set to recover
// promotions that never completed.
func (s *Store) ListSweepableGroupIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := s.waitlist.Distinct(ctx, "group_id", bson.M{})
	if err != nil {
		return nil, err
	}
	queued := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			queued = append(queued, id)
		}
	}
	if len(queued) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"_id":        bson.M{"$in": queued},
		"status":     status.Open,
		"auto_allow": true,
	}
	cur, err := s.groups.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func (s *Store) SetGroupStatus(ctx context.Context, groupID primitive.ObjectID, stat string) error {
	_, err := s.groups.UpdateByID(ctx, groupID, bson.M{"$set": bson.M{
		"status":     stat,
		"updated_at": time.Now().UTC(),
	}})
	return err
}
