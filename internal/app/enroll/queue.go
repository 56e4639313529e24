// internal/app/enroll/queue.go
package enroll

import (
	"context"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Queue is the per-group FIFO waitlist: ordered by enqueue time, ties
// broken by insertion order. Removal of an absent entry is a no-op, so
// withdrawals racing a promotion sweep never fault.
type Queue struct {
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

func (q *Queue) Enqueue(ctx context.Context, groupID, userID primitive.ObjectID, at time.Time) error {
	if err := q.store.InsertWaitlistEntry(ctx, groupID, userID, at); err != nil {
		return storeErr(err)
	}
	return nil
}

// PeekNext returns the head of the group's queue without removing it.
// The second return is false when the queue is empty.
func (q *Queue) PeekNext(ctx context.Context, groupID primitive.ObjectID) (models.WaitlistEntry, bool, error) {
	entries, err := q.store.LoadWaitlist(ctx, groupID)
	if err != nil {
		return models.WaitlistEntry{}, false, storeErr(err)
	}
	if len(entries) == 0 {
		return models.WaitlistEntry{}, false, nil
	}
	return entries[0], true, nil
}

// Remove deletes the user's entry. Reports whether an entry existed;
// removing a missing entry is not an error.
func (q *Queue) Remove(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	removed, err := q.store.DeleteWaitlistEntry(ctx, groupID, userID)
	if err != nil {
		return false, storeErr(err)
	}
	return removed, nil
}

// Contains reports whether the user is queued for the group.
func (q *Queue) Contains(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	ok, err := q.store.IsWaitlisted(ctx, groupID, userID)
	if err != nil {
		return false, storeErr(err)
	}
	return ok, nil
}

// Entries returns the whole queue in order. Used when draining a closing
// group.
func (q *Queue) Entries(ctx context.Context, groupID primitive.ObjectID) ([]models.WaitlistEntry, error) {
	entries, err := q.store.LoadWaitlist(ctx, groupID)
	if err != nil {
		return nil, storeErr(err)
	}
	return entries, nil
}
