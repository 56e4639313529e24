// internal/app/enroll/controller.go
package enroll

import (
	"context"
	"time"

	"github.com/dalemusser/teamhub/internal/app/system/status"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Status is the decided state of an enrollment operation.
type Status string

const (
	StatusAdmitted   Status = "admitted"
	StatusWaitlisted Status = "waitlisted"
	StatusRejected   Status = "rejected"
	StatusLeft       Status = "left"
	StatusWithdrawn  Status = "withdrawn"
)

// Outcome is the synchronous result of an enrollment operation. Reason is
// set when Status is rejected or the operation could not take effect.
type Outcome struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
}

// Controller orchestrates the eligibility filter, capacity ledger, and
// waitlist queue. Every operation for a group runs under that group's lock,
// so "check capacity, then reserve or enqueue" is atomic with respect to
// concurrent joins, leaves, and promotion sweeps on the same group. Groups
// never share locks.
type Controller struct {
	store   Store
	ledger  *Ledger
	queue   *Queue
	emitter Emitter
	locks   *groupLocks
	log     *zap.Logger

	now func() time.Time
}

func NewController(store Store, emitter Emitter, logger *zap.Logger) *Controller {
	return &Controller{
		store:   store,
		ledger:  NewLedger(store),
		queue:   NewQueue(store),
		emitter: emitter,
		locks:   newGroupLocks(),
		log:     logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// JoinGroup decides a join request: admit, waitlist, or reject.
func (c *Controller) JoinGroup(ctx context.Context, userID, groupID primitive.ObjectID) (Outcome, error) {
	unlock := c.locks.lock(groupID)
	defer unlock()

	g, err := c.store.LoadGroup(ctx, groupID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	u, err := c.store.LoadUser(ctx, userID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	isMember, err := c.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	isWaitlisted, err := c.queue.Contains(ctx, groupID, userID)
	if err != nil {
		return Outcome{}, err
	}

	if ok, reason := CheckJoin(u, g, isMember, isWaitlisted, c.now()); !ok {
		c.emitter.Emit(ctx, newEvent(EventRejected, userID, groupID, reason))
		return Outcome{Status: StatusRejected, Reason: reason}, nil
	}

	reserved, err := c.ledger.TryReserve(ctx, g, userID, false)
	if err != nil {
		return Outcome{}, err
	}
	if reserved {
		c.log.Info("user admitted",
			zap.String("user_id", userID.Hex()), zap.String("group_id", groupID.Hex()))
		c.emitter.Emit(ctx, newEvent(EventAdmitted, userID, groupID, ""))
		return Outcome{Status: StatusAdmitted}, nil
	}

	// Full: queue the candidate instead.
	if err := c.queue.Enqueue(ctx, groupID, userID, c.now()); err != nil {
		return Outcome{}, err
	}
	c.log.Info("user waitlisted",
		zap.String("user_id", userID.Hex()), zap.String("group_id", groupID.Hex()))
	c.emitter.Emit(ctx, newEvent(EventWaitlisted, userID, groupID, ""))
	return Outcome{Status: StatusWaitlisted}, nil
}

// LeaveGroup frees the user's seat and runs the promotion sweep for the
// freed seat.
func (c *Controller) LeaveGroup(ctx context.Context, userID, groupID primitive.ObjectID) (Outcome, error) {
	unlock := c.locks.lock(groupID)
	defer unlock()

	if _, err := c.store.LoadGroup(ctx, groupID); err != nil {
		return Outcome{}, storeErr(err)
	}

	freed, err := c.ledger.Release(ctx, groupID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if !freed {
		return Outcome{Status: StatusRejected, Reason: ReasonNotMember}, nil
	}
	c.log.Info("seat freed",
		zap.String("user_id", userID.Hex()), zap.String("group_id", groupID.Hex()))

	if _, err := c.sweepFreedSeat(ctx, groupID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: StatusLeft}, nil
}

// SweepGroup re-runs the promotion sweep for a group until no further
// candidate can be promoted. The periodic sweeper uses this to pick up
// seats that were freed without a completed sweep (process restart, or a
// group whose requirements changed since candidates queued).
func (c *Controller) SweepGroup(ctx context.Context, groupID primitive.ObjectID) error {
	unlock := c.locks.lock(groupID)
	defer unlock()

	for {
		promoted, err := c.sweepFreedSeat(ctx, groupID)
		if err != nil {
			return err
		}
		if !promoted {
			return nil
		}
	}
}

// sweepFreedSeat promotes at most one queued candidate into a freed seat
// and reports whether a promotion happened. Candidates found ineligible on
// re-check are dequeued and rejected, and the sweep advances to the next.
// Under a manual-approval policy the seat is left free and an
// approval-pending event fires for the head candidate. Caller holds the
// group lock.
func (c *Controller) sweepFreedSeat(ctx context.Context, groupID primitive.ObjectID) (bool, error) {
	// Reload inside the lock: status or requirements may have changed.
	g, err := c.store.LoadGroup(ctx, groupID)
	if err != nil {
		return false, storeErr(err)
	}
	policy := PolicyFor(g)

	for {
		entry, ok, err := c.queue.PeekNext(ctx, groupID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil // seat stays free until the next join
		}

		u, err := c.store.LoadUser(ctx, entry.UserID)
		if err != nil {
			return false, storeErr(err)
		}
		isMember, err := c.store.IsMember(ctx, groupID, entry.UserID)
		if err != nil {
			return false, storeErr(err)
		}

		if ok, reason := CheckPromotion(u, g, isMember, c.now()); !ok {
			if _, err := c.queue.Remove(ctx, groupID, entry.UserID); err != nil {
				return false, err
			}
			c.emitter.Emit(ctx, newEvent(EventRejected, entry.UserID, groupID, reason))
			continue
		}

		if policy.NextAction(entry) == HoldForApproval {
			c.log.Info("promotion held for approval",
				zap.String("user_id", entry.UserID.Hex()),
				zap.String("group_id", groupID.Hex()),
				zap.String("policy", policy.Name()))
			c.emitter.Emit(ctx, newEvent(EventApprovalPending, entry.UserID, groupID, ""))
			return false, nil
		}

		reserved, err := c.ledger.TryReserve(ctx, g, entry.UserID, true)
		if err != nil {
			return false, err
		}
		if !reserved {
			// No seat after all; leave the candidate queued.
			return false, nil
		}
		if _, err := c.queue.Remove(ctx, groupID, entry.UserID); err != nil {
			return false, err
		}
		c.log.Info("user promoted from waitlist",
			zap.String("user_id", entry.UserID.Hex()), zap.String("group_id", groupID.Hex()))
		c.emitter.Emit(ctx, newEvent(EventPromoted, entry.UserID, groupID, ""))
		return true, nil // one promotion per freed seat
	}
}

// WithdrawFromWaitlist removes the user's queue entry. Idempotent: a second
// withdrawal is a no-op, not an error.
func (c *Controller) WithdrawFromWaitlist(ctx context.Context, userID, groupID primitive.ObjectID) (Outcome, error) {
	unlock := c.locks.lock(groupID)
	defer unlock()

	if _, err := c.queue.Remove(ctx, groupID, userID); err != nil {
		return Outcome{}, err
	}
	return Outcome{Status: StatusWithdrawn}, nil
}

// ApprovePending manually promotes a queued candidate. It performs the same
// reservation/dequeue/transition as the automatic sweep, without the
// auto-allow gate. Approving into a group that has since refilled returns a
// waitlisted outcome with reason "full"; the candidate stays queued.
func (c *Controller) ApprovePending(ctx context.Context, userID, groupID primitive.ObjectID) (Outcome, error) {
	unlock := c.locks.lock(groupID)
	defer unlock()

	g, err := c.store.LoadGroup(ctx, groupID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}

	queued, err := c.queue.Contains(ctx, groupID, userID)
	if err != nil {
		return Outcome{}, err
	}
	if !queued {
		return Outcome{Status: StatusRejected, Reason: ReasonNotWaitlisted}, nil
	}

	u, err := c.store.LoadUser(ctx, userID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	isMember, err := c.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return Outcome{}, storeErr(err)
	}
	if ok, reason := CheckPromotion(u, g, isMember, c.now()); !ok {
		if _, err := c.queue.Remove(ctx, groupID, userID); err != nil {
			return Outcome{}, err
		}
		c.emitter.Emit(ctx, newEvent(EventRejected, userID, groupID, reason))
		return Outcome{Status: StatusRejected, Reason: reason}, nil
	}

	reserved, err := c.ledger.TryReserve(ctx, g, userID, true)
	if err != nil {
		return Outcome{}, err
	}
	if !reserved {
		return Outcome{Status: StatusWaitlisted, Reason: ReasonFull}, nil
	}
	if _, err := c.queue.Remove(ctx, groupID, userID); err != nil {
		return Outcome{}, err
	}
	c.log.Info("user promoted by approval",
		zap.String("user_id", userID.Hex()), zap.String("group_id", groupID.Hex()))
	c.emitter.Emit(ctx, newEvent(EventPromoted, userID, groupID, ""))
	return Outcome{Status: StatusAdmitted}, nil
}

// CloseGroup sets the group's status to closed and drains its waitlist,
// rejecting every remaining entry. No further joins or promotions are
// accepted once closed.
func (c *Controller) CloseGroup(ctx context.Context, groupID primitive.ObjectID) error {
	unlock := c.locks.lock(groupID)
	defer unlock()

	g, err := c.store.LoadGroup(ctx, groupID)
	if err != nil {
		return storeErr(err)
	}
	if g.Status == status.Closed {
		return nil
	}
	if err := c.store.SetGroupStatus(ctx, groupID, status.Closed); err != nil {
		return storeErr(err)
	}

	entries, err := c.queue.Entries(ctx, groupID)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := c.queue.Remove(ctx, groupID, entry.UserID); err != nil {
			return err
		}
		c.emitter.Emit(ctx, newEvent(EventRejected, entry.UserID, groupID, ReasonClosed))
	}
	c.log.Info("group closed",
		zap.String("group_id", groupID.Hex()), zap.Int("waitlist_drained", len(entries)))
	return nil
}
