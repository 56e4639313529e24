// internal/app/enroll/ledger.go
package enroll

import (
	"context"

	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ledger enforces the capacity invariant: occupied seats never exceed
// MaxParticipants. Seat counts are derived from the membership collection
// and mutated only through TryReserve and Release.
//
// TryReserve is check-then-insert; the caller must hold the group's lock
// across the call so two reservations for the last seat cannot interleave.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// TryReserve occupies a seat for the user if one is available. Returns
// false when the group is full; that is a deterministic branch, not an
// error.
func (l *Ledger) TryReserve(ctx context.Context, g models.Group, userID primitive.ObjectID, promoted bool) (bool, error) {
	n, err := l.store.MemberCount(ctx, g.ID)
	if err != nil {
		return false, storeErr(err)
	}
	if n >= g.MaxParticipants {
		return false, nil
	}
	if err := l.store.InsertMember(ctx, g.ID, userID, promoted); err != nil {
		return false, storeErr(err)
	}
	return true, nil
}

// Release frees the user's seat. Reports whether a seat was actually freed.
// Release pairs with a prior successful reservation; the ledger does not
// deduplicate double-releases beyond the membership row's existence.
func (l *Ledger) Release(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	removed, err := l.store.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return false, storeErr(err)
	}
	return removed, nil
}
