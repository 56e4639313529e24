// internal/app/enroll/events.go
package enroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventType classifies enrollment domain events.
type EventType string

const (
	EventAdmitted        EventType = "admitted"
	EventWaitlisted      EventType = "waitlisted"
	EventPromoted        EventType = "promoted"
	EventRejected        EventType = "rejected"
	EventApprovalPending EventType = "approval_pending"
)

// Event is an enrollment domain event. The ID is a stable identifier handed
// to external delivery systems; it is independent of any storage row id.
type Event struct {
	ID      string
	Type    EventType
	UserID  primitive.ObjectID
	GroupID primitive.ObjectID
	Reason  Reason // set for rejections, empty otherwise
	At      time.Time
}

// Emitter receives enrollment events. Delivery is entirely the emitter's
// responsibility; the engine emits and moves on, so Emit does not return
// an error.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

func newEvent(t EventType, userID, groupID primitive.ObjectID, reason Reason) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		UserID:  userID,
		GroupID: groupID,
		Reason:  reason,
		At:      time.Now().UTC(),
	}
}

// LogEmitter writes events to the service log. Used on its own in tests and
// as a tee alongside the notification store in production.
type LogEmitter struct {
	log *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	return &LogEmitter{log: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, ev Event) {
	e.log.Info("enrollment event",
		zap.String("event_id", ev.ID),
		zap.String("type", string(ev.Type)),
		zap.String("user_id", ev.UserID.Hex()),
		zap.String("group_id", ev.GroupID.Hex()),
		zap.String("reason", string(ev.Reason)),
	)
}

// MultiEmitter fans an event out to every emitter in order.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, ev Event) {
	for _, e := range m {
		e.Emit(ctx, ev)
	}
}
