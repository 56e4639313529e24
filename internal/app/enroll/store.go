// internal/app/enroll/store.go
package enroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors surfaced by Store implementations and the Controller.
var (
	// ErrGroupNotFound is returned when the group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrStorageUnavailable wraps infrastructure failures from the store.
	// Callers may retry; the engine itself never does. A failed operation
	// leaves membership and waitlist state untouched.
	ErrStorageUnavailable = errors.New("enrollment storage unavailable")
)

// Store is the persistence boundary the engine consumes. Implementations
// are expected to be safe for concurrent use; the Controller serializes
// all calls for a given group behind that group's lock, so no individual
// method needs check-then-act atomicity of its own.
type Store interface {
	// LoadGroup returns the group or ErrGroupNotFound.
	LoadGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error)

	// LoadUser returns the user or ErrUserNotFound.
	LoadUser(ctx context.Context, userID primitive.ObjectID) (models.User, error)

	// MemberCount returns the number of occupied seats for the group.
	MemberCount(ctx context.Context, groupID primitive.ObjectID) (int, error)

	// IsMember reports whether the user currently occupies a seat.
	IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)

	// InsertMember occupies a seat for the user.
	InsertMember(ctx context.Context, groupID, userID primitive.ObjectID, promoted bool) error

	// RemoveMember frees the user's seat. Reports whether a seat was
	// actually freed (false when the user was not a member).
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)

	// IsWaitlisted reports whether the user is queued for the group.
	IsWaitlisted(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)

	// LoadWaitlist returns the group's queue ordered by created_at
	// ascending, ties broken by insertion order.
	LoadWaitlist(ctx context.Context, groupID primitive.ObjectID) ([]models.WaitlistEntry, error)

	// InsertWaitlistEntry appends the user to the group's queue.
	InsertWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID, at time.Time) error

	// DeleteWaitlistEntry removes the user from the group's queue. Reports
	// whether an entry existed; deleting a missing entry is not an error.
	DeleteWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)

	// SetGroupStatus updates the group's admission status ("open"/"closed").
	SetGroupStatus(ctx context.Context, groupID primitive.ObjectID, status string) error
}

// storeErr wraps an infrastructure failure so callers can match it with
// errors.Is(err, ErrStorageUnavailable). Domain sentinels pass through.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrUserNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
