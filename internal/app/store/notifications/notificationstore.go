// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"time"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Store persists enrollment events as notification documents for the
// delivery subsystem to pick up. It implements enroll.Emitter; emission is
// best-effort and failures are logged, never propagated into the engine's
// decision path.
type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("notifications"), log: logger}
}

// Emit writes the event as an unread notification.
func (s *Store) Emit(ctx context.Context, ev enroll.Event) {
	doc := models.Notification{
		EventID:   ev.ID,
		UserID:    ev.UserID,
		GroupID:   ev.GroupID,
		Type:      string(ev.Type),
		Reason:    string(ev.Reason),
		CreatedAt: ev.At,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		s.log.Error("notification insert failed",
			zap.String("event_id", ev.ID),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
	}
}

// ListByUser returns a user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags a notification as read.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_read": true,
		"read_at": time.Now().UTC(),
	}})
	return err
}
