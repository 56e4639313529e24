package enroll_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/teamhub/internal/app/enroll"
	"github.com/dalemusser/teamhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory enroll.Store for engine tests. Safe for
// concurrent use. Setting failWith makes every operation return that error,
// simulating an unavailable backend.
type memStore struct {
	mu       sync.Mutex
	groups   map[primitive.ObjectID]models.Group
	users    map[primitive.ObjectID]models.User
	members  map[primitive.ObjectID]map[primitive.ObjectID]bool
	waitlist map[primitive.ObjectID][]models.WaitlistEntry
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		groups:   make(map[primitive.ObjectID]models.Group),
		users:    make(map[primitive.ObjectID]models.User),
		members:  make(map[primitive.ObjectID]map[primitive.ObjectID]bool),
		waitlist: make(map[primitive.ObjectID][]models.WaitlistEntry),
	}
}

func (s *memStore) putGroup(g models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
}

func (s *memStore) putUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *memStore) LoadGroup(ctx context.Context, groupID primitive.ObjectID) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.Group{}, s.failWith
	}
	g, ok := s.groups[groupID]
	if !ok {
		return models.Group{}, enroll.ErrGroupNotFound
	}
	return g, nil
}

func (s *memStore) LoadUser(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return models.User{}, s.failWith
	}
	u, ok := s.users[userID]
	if !ok {
		return models.User{}, enroll.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) MemberCount(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return 0, s.failWith
	}
	return len(s.members[groupID]), nil
}

func (s *memStore) IsMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	return s.members[groupID][userID], nil
}

func (s *memStore) InsertMember(ctx context.Context, groupID, userID primitive.ObjectID, promoted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if s.members[groupID] == nil {
		s.members[groupID] = make(map[primitive.ObjectID]bool)
	}
	s.members[groupID][userID] = true
	return nil
}

func (s *memStore) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	if !s.members[groupID][userID] {
		return false, nil
	}
	delete(s.members[groupID], userID)
	return true, nil
}

func (s *memStore) IsWaitlisted(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	for _, e := range s.waitlist[groupID] {
		if e.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) LoadWaitlist(ctx context.Context, groupID primitive.ObjectID) ([]models.WaitlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	entries := make([]models.WaitlistEntry, len(s.waitlist[groupID]))
	copy(entries, s.waitlist[groupID])
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *memStore) InsertWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.waitlist[groupID] = append(s.waitlist[groupID], models.WaitlistEntry{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserID:    userID,
		CreatedAt: at,
	})
	return nil
}

func (s *memStore) DeleteWaitlistEntry(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	entries := s.waitlist[groupID]
	for i, e := range entries {
		if e.UserID == userID {
			s.waitlist[groupID] = append(entries[:i:i], entries[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) SetGroupStatus(ctx context.Context, groupID primitive.ObjectID, stat string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	g := s.groups[groupID]
	g.Status = stat
	s.groups[groupID] = g
	return nil
}

// eventRecorder captures emitted events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []enroll.Event
}

func (r *eventRecorder) Emit(ctx context.Context, ev enroll.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []enroll.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]enroll.Event, len(r.events))
	copy(out, r.events)
	return out
}

// last returns the most recent event of the given type, if any.
func (r *eventRecorder) last(t enroll.EventType) (enroll.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return enroll.Event{}, false
}

// count returns how many events of the given type were emitted.
func (r *eventRecorder) count(t enroll.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}
