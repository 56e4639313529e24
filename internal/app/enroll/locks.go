// internal/app/enroll/locks.go
package enroll

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// groupLocks serializes enrollment operations per group. Operations on
// different groups never share a lock, so unrelated groups do not contend.
// Locks are created on first use and kept for the process lifetime; the
// footprint is one mutex per group seen.
type groupLocks struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[primitive.ObjectID]*sync.Mutex)}
}

// lock acquires the group's mutex and returns its unlock function.
func (g *groupLocks) lock(groupID primitive.ObjectID) func() {
	g.mu.Lock()
	m, ok := g.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		g.locks[groupID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
