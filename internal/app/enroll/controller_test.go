package enroll_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	"github.com/dalemusser/teamhub/internal/app/system/status"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testEnv struct {
	store    *memStore
	recorder *eventRecorder
	ctrl     *enroll.Controller
}

func newTestEnv() *testEnv {
	store := newMemStore()
	recorder := &eventRecorder{}
	return &testEnv{
		store:    store,
		recorder: recorder,
		ctrl:     enroll.NewController(store, recorder, zap.NewNop()),
	}
}

func (e *testEnv) addGroup(maxParticipants int, autoAllow bool) models.Group {
	g := models.Group{
		ID:              primitive.NewObjectID(),
		Name:            "Test Group",
		MaxParticipants: maxParticipants,
		AutoAllow:       autoAllow,
		Status:          status.Open,
	}
	e.store.putGroup(g)
	return g
}

func (e *testEnv) addUser() models.User {
	u := models.User{ID: primitive.NewObjectID(), FullName: "Test User"}
	e.store.putUser(u)
	return u
}

func (e *testEnv) mustJoin(t *testing.T, userID, groupID primitive.ObjectID, want enroll.Status) {
	t.Helper()
	out, err := e.ctrl.JoinGroup(context.Background(), userID, groupID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if out.Status != want {
		t.Fatalf("JoinGroup status: got %q (reason %q), want %q", out.Status, out.Reason, want)
	}
}

func TestJoinGroup_AdmitsThenWaitlists(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u1 := env.addUser()
	u2 := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, u2.ID, g.ID, enroll.StatusWaitlisted)

	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count: got %d, want 1", n)
	}
	if env.recorder.count(enroll.EventAdmitted) != 1 {
		t.Errorf("admitted events: got %d, want 1", env.recorder.count(enroll.EventAdmitted))
	}
	if env.recorder.count(enroll.EventWaitlisted) != 1 {
		t.Errorf("waitlisted events: got %d, want 1", env.recorder.count(enroll.EventWaitlisted))
	}
}

func TestJoinGroup_Rejections(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(2, true)
	u := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u.ID, g.ID, enroll.StatusAdmitted)

	// Second join of a member is rejected, not double-admitted.
	out, err := env.ctrl.JoinGroup(ctx, u.ID, g.ID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if out.Status != enroll.StatusRejected || out.Reason != enroll.ReasonAlreadyMember {
		t.Errorf("got %q/%q, want rejected/already_member", out.Status, out.Reason)
	}

	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count after rejected rejoin: got %d, want 1", n)
	}
}

func TestJoinGroup_DeadlinePassed(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(5, true)
	past := time.Now().UTC().Add(-time.Hour)
	g.Deadline = &past
	env.store.putGroup(g)
	u := env.addUser()

	out, err := env.ctrl.JoinGroup(context.Background(), u.ID, g.ID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if out.Status != enroll.StatusRejected || out.Reason != enroll.ReasonDeadlinePassed {
		t.Errorf("got %q/%q, want rejected/deadline_passed", out.Status, out.Reason)
	}
	if ev, ok := env.recorder.last(enroll.EventRejected); !ok || ev.Reason != enroll.ReasonDeadlinePassed {
		t.Error("expected a rejected event with reason deadline_passed")
	}
}

func TestJoinGroup_UnknownGroup(t *testing.T) {
	env := newTestEnv()
	u := env.addUser()

	_, err := env.ctrl.JoinGroup(context.Background(), u.ID, primitive.NewObjectID())
	if !errors.Is(err, enroll.ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestLeaveGroup_PromotesNextInFIFO(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u1 := env.addUser()
	a := env.addUser()
	b := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, a.ID, g.ID, enroll.StatusWaitlisted)
	env.mustJoin(t, b.ID, g.ID, enroll.StatusWaitlisted)

	out, err := env.ctrl.LeaveGroup(ctx, u1.ID, g.ID)
	if err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	if out.Status != enroll.StatusLeft {
		t.Fatalf("LeaveGroup status: got %q, want %q", out.Status, enroll.StatusLeft)
	}

	// A queued first, so A is promoted; B stays waitlisted.
	if isMember, _ := env.store.IsMember(ctx, g.ID, a.ID); !isMember {
		t.Error("expected first-queued user to be promoted")
	}
	if isMember, _ := env.store.IsMember(ctx, g.ID, b.ID); isMember {
		t.Error("second-queued user must not be promoted for a single freed seat")
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, a.ID); queued {
		t.Error("promoted user must leave the waitlist")
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, b.ID); !queued {
		t.Error("second-queued user must remain waitlisted")
	}

	ev, ok := env.recorder.last(enroll.EventPromoted)
	if !ok {
		t.Fatal("expected a promoted event")
	}
	if ev.UserID != a.ID {
		t.Errorf("promoted user: got %s, want %s", ev.UserID.Hex(), a.ID.Hex())
	}

	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count after promotion: got %d, want 1", n)
	}
}

func TestLeaveGroup_NotMember(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u := env.addUser()

	out, err := env.ctrl.LeaveGroup(context.Background(), u.ID, g.ID)
	if err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	if out.Status != enroll.StatusRejected || out.Reason != enroll.ReasonNotMember {
		t.Errorf("got %q/%q, want rejected/not_member", out.Status, out.Reason)
	}
}

func TestLeaveGroup_SweepSkipsNowIneligible(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u1 := env.addUser()
	a := env.addUser() // will become ineligible before the seat frees
	b := env.addUser()
	b.Skills = []string{"go"}
	env.store.putUser(b)
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, a.ID, g.ID, enroll.StatusWaitlisted)
	env.mustJoin(t, b.ID, g.ID, enroll.StatusWaitlisted)

	// Requirements change while A and B are queued; only B qualifies now.
	g.Skills = []string{"go"}
	env.store.putGroup(g)

	if _, err := env.ctrl.LeaveGroup(ctx, u1.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}

	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, a.ID); queued {
		t.Error("ineligible candidate must be dequeued by the sweep")
	}
	if ev, ok := env.recorder.last(enroll.EventRejected); !ok || ev.UserID != a.ID || ev.Reason != enroll.ReasonRequirementsNotMet {
		t.Error("expected a rejected event for the dequeued candidate")
	}
	if isMember, _ := env.store.IsMember(ctx, g.ID, b.ID); !isMember {
		t.Error("next eligible candidate must be promoted")
	}
}

func TestManualApprovalFlow(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, false) // manual approval
	u1 := env.addUser()
	u2 := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, u2.ID, g.ID, enroll.StatusWaitlisted)

	if _, err := env.ctrl.LeaveGroup(ctx, u1.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}

	// No auto-promotion: the seat stays free, u2 stays queued, an
	// approval-pending event fires.
	if isMember, _ := env.store.IsMember(ctx, g.ID, u2.ID); isMember {
		t.Fatal("candidate must not be auto-promoted under manual approval")
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, u2.ID); !queued {
		t.Fatal("candidate must remain queued until approved")
	}
	ev, ok := env.recorder.last(enroll.EventApprovalPending)
	if !ok {
		t.Fatal("expected an approval_pending event")
	}
	if ev.UserID != u2.ID {
		t.Errorf("approval_pending user: got %s, want %s", ev.UserID.Hex(), u2.ID.Hex())
	}

	out, err := env.ctrl.ApprovePending(ctx, u2.ID, g.ID)
	if err != nil {
		t.Fatalf("ApprovePending failed: %v", err)
	}
	if out.Status != enroll.StatusAdmitted {
		t.Fatalf("ApprovePending status: got %q (reason %q), want admitted", out.Status, out.Reason)
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, u2.ID); queued {
		t.Error("approved user must leave the waitlist")
	}
	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count after approval: got %d, want 1", n)
	}
}

func TestApprovePending_NotQueued(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, false)
	u := env.addUser()

	out, err := env.ctrl.ApprovePending(context.Background(), u.ID, g.ID)
	if err != nil {
		t.Fatalf("ApprovePending failed: %v", err)
	}
	if out.Status != enroll.StatusRejected || out.Reason != enroll.ReasonNotWaitlisted {
		t.Errorf("got %q/%q, want rejected/not_waitlisted", out.Status, out.Reason)
	}
}

func TestApprovePending_GroupRefilled(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, false)
	u1 := env.addUser()
	u2 := env.addUser()
	u3 := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, u2.ID, g.ID, enroll.StatusWaitlisted)

	if _, err := env.ctrl.LeaveGroup(ctx, u1.ID, g.ID); err != nil {
		t.Fatalf("LeaveGroup failed: %v", err)
	}
	// The free seat is taken by a direct join before approval happens.
	env.mustJoin(t, u3.ID, g.ID, enroll.StatusAdmitted)

	out, err := env.ctrl.ApprovePending(ctx, u2.ID, g.ID)
	if err != nil {
		t.Fatalf("ApprovePending failed: %v", err)
	}
	if out.Status != enroll.StatusWaitlisted || out.Reason != enroll.ReasonFull {
		t.Errorf("got %q/%q, want waitlisted/full", out.Status, out.Reason)
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, u2.ID); !queued {
		t.Error("candidate must stay queued when approval finds the group full")
	}
	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count: got %d, want 1 (capacity invariant)", n)
	}
}

func TestWithdrawFromWaitlist_Idempotent(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u1 := env.addUser()
	u2 := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, u2.ID, g.ID, enroll.StatusWaitlisted)

	for i := 0; i < 2; i++ {
		out, err := env.ctrl.WithdrawFromWaitlist(ctx, u2.ID, g.ID)
		if err != nil {
			t.Fatalf("WithdrawFromWaitlist call %d failed: %v", i+1, err)
		}
		if out.Status != enroll.StatusWithdrawn {
			t.Errorf("call %d status: got %q, want withdrawn", i+1, out.Status)
		}
	}
	if queued, _ := env.store.IsWaitlisted(ctx, g.ID, u2.ID); queued {
		t.Error("user must be off the waitlist after withdrawal")
	}
}

func TestCloseGroup_DrainsWaitlist(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u1 := env.addUser()
	u2 := env.addUser()
	u3 := env.addUser()
	ctx := context.Background()

	env.mustJoin(t, u1.ID, g.ID, enroll.StatusAdmitted)
	env.mustJoin(t, u2.ID, g.ID, enroll.StatusWaitlisted)
	env.mustJoin(t, u3.ID, g.ID, enroll.StatusWaitlisted)

	if err := env.ctrl.CloseGroup(ctx, g.ID); err != nil {
		t.Fatalf("CloseGroup failed: %v", err)
	}

	entries, _ := env.store.LoadWaitlist(ctx, g.ID)
	if len(entries) != 0 {
		t.Errorf("waitlist after close: got %d entries, want 0", len(entries))
	}
	rejected := 0
	for _, ev := range env.recorder.all() {
		if ev.Type == enroll.EventRejected && ev.Reason == enroll.ReasonClosed {
			rejected++
		}
	}
	if rejected != 2 {
		t.Errorf("rejected(closed) events: got %d, want 2", rejected)
	}

	// Joins are refused once closed.
	u4 := env.addUser()
	out, err := env.ctrl.JoinGroup(ctx, u4.ID, g.ID)
	if err != nil {
		t.Fatalf("JoinGroup failed: %v", err)
	}
	if out.Status != enroll.StatusRejected || out.Reason != enroll.ReasonClosed {
		t.Errorf("join after close: got %q/%q, want rejected/closed", out.Status, out.Reason)
	}

	// Closing again is a no-op.
	if err := env.ctrl.CloseGroup(ctx, g.ID); err != nil {
		t.Errorf("second CloseGroup: got %v, want nil", err)
	}
}

func TestJoinGroup_StorageUnavailable(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	u := env.addUser()

	env.store.fail(errors.New("connection reset"))

	_, err := env.ctrl.JoinGroup(context.Background(), u.ID, g.ID)
	if !errors.Is(err, enroll.ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestConcurrentJoins_CapacityInvariant(t *testing.T) {
	env := newTestEnv()
	const capacity = 3
	const callers = 20
	g := env.addGroup(capacity, true)
	ctx := context.Background()

	users := make([]models.User, callers)
	for i := range users {
		users[i] = env.addUser()
	}

	outcomes := make([]enroll.Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := env.ctrl.JoinGroup(ctx, users[i].ID, g.ID)
			if err != nil {
				t.Errorf("JoinGroup failed: %v", err)
				return
			}
			outcomes[i] = out
		}(i)
	}
	wg.Wait()

	admitted, waitlisted := 0, 0
	for _, out := range outcomes {
		switch out.Status {
		case enroll.StatusAdmitted:
			admitted++
		case enroll.StatusWaitlisted:
			waitlisted++
		}
	}
	if admitted != capacity {
		t.Errorf("admitted: got %d, want %d", admitted, capacity)
	}
	if waitlisted != callers-capacity {
		t.Errorf("waitlisted: got %d, want %d", waitlisted, callers-capacity)
	}

	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != capacity {
		t.Errorf("member count: got %d, want %d (capacity invariant)", n, capacity)
	}
}

func TestConcurrentLeaves_OnePromotionPerSeat(t *testing.T) {
	env := newTestEnv()
	const capacity = 4
	g := env.addGroup(capacity, true)
	ctx := context.Background()

	members := make([]models.User, capacity)
	for i := range members {
		members[i] = env.addUser()
		env.mustJoin(t, members[i].ID, g.ID, enroll.StatusAdmitted)
	}
	queued := make([]models.User, capacity)
	for i := range queued {
		queued[i] = env.addUser()
		env.mustJoin(t, queued[i].ID, g.ID, enroll.StatusWaitlisted)
	}

	var wg sync.WaitGroup
	for _, m := range members {
		wg.Add(1)
		go func(userID primitive.ObjectID) {
			defer wg.Done()
			if _, err := env.ctrl.LeaveGroup(ctx, userID, g.ID); err != nil {
				t.Errorf("LeaveGroup failed: %v", err)
			}
		}(m.ID)
	}
	wg.Wait()

	// Every freed seat promotes exactly one queued user.
	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != capacity {
		t.Errorf("member count: got %d, want %d", n, capacity)
	}
	entries, _ := env.store.LoadWaitlist(ctx, g.ID)
	if len(entries) != 0 {
		t.Errorf("waitlist: got %d entries, want 0", len(entries))
	}
	if got := env.recorder.count(enroll.EventPromoted); got != capacity {
		t.Errorf("promoted events: got %d, want %d", got, capacity)
	}
}

func TestSweepGroup_PromotesIntoFreeSeats(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(3, true)
	ctx := context.Background()

	// Candidates queued while seats are free: the state a crash between a
	// leave and its sweep leaves behind.
	queued := make([]models.User, 2)
	base := time.Now().UTC()
	for i := range queued {
		queued[i] = env.addUser()
		if err := env.store.InsertWaitlistEntry(ctx, g.ID, queued[i].ID, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("InsertWaitlistEntry failed: %v", err)
		}
	}

	if err := env.ctrl.SweepGroup(ctx, g.ID); err != nil {
		t.Fatalf("SweepGroup failed: %v", err)
	}

	// Both candidates fit; both get promoted, in order.
	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 2 {
		t.Errorf("member count: got %d, want 2", n)
	}
	entries, _ := env.store.LoadWaitlist(ctx, g.ID)
	if len(entries) != 0 {
		t.Errorf("waitlist: got %d entries, want 0", len(entries))
	}
	if got := env.recorder.count(enroll.EventPromoted); got != 2 {
		t.Errorf("promoted events: got %d, want 2", got)
	}
	events := env.recorder.all()
	if len(events) >= 2 && (events[0].UserID != queued[0].ID || events[1].UserID != queued[1].ID) {
		t.Error("promotions out of queue order")
	}
}

func TestSweepGroup_FullGroupIsNoOp(t *testing.T) {
	env := newTestEnv()
	g := env.addGroup(1, true)
	ctx := context.Background()

	member := env.addUser()
	env.mustJoin(t, member.ID, g.ID, enroll.StatusAdmitted)
	waiting := env.addUser()
	env.mustJoin(t, waiting.ID, g.ID, enroll.StatusWaitlisted)

	if err := env.ctrl.SweepGroup(ctx, g.ID); err != nil {
		t.Fatalf("SweepGroup failed: %v", err)
	}

	n, _ := env.store.MemberCount(ctx, g.ID)
	if n != 1 {
		t.Errorf("member count: got %d, want 1", n)
	}
	if env.recorder.count(enroll.EventPromoted) != 0 {
		t.Error("no promotion expected while the group is full")
	}
}
