// internal/app/system/workers/waitlistsweeper.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Sweeper is the slice of the enrollment engine the worker drives.
type Sweeper interface {
	SweepGroup(ctx context.Context, groupID primitive.ObjectID) error
}

// GroupLister returns the groups worth sweeping (open, auto-allow, with
// queued candidates).
type GroupLister func(ctx context.Context) ([]primitive.ObjectID, error)

// WaitlistSweeper is a background worker that periodically re-runs the
// promotion sweep. Normal promotions happen inline when a seat frees; this
// worker covers seats freed without a completed sweep, such as after a
// process restart or when a group's requirements change while candidates
// are queued.
type WaitlistSweeper struct {
	engine     Sweeper
	listGroups GroupLister
	log        *zap.Logger
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

func NewWaitlistSweeper(engine Sweeper, listGroups GroupLister, logger *zap.Logger, interval time.Duration) *WaitlistSweeper {
	return &WaitlistSweeper{
		engine:     engine,
		listGroups: listGroups,
		log:        logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *WaitlistSweeper) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("waitlist sweeper started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *WaitlistSweeper) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("waitlist sweeper stopped")
}

func (w *WaitlistSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *WaitlistSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids, err := w.listGroups(ctx)
	if err != nil {
		w.log.Error("failed to list sweepable groups", zap.Error(err))
		return
	}
	for _, id := range ids {
		if err := w.engine.SweepGroup(ctx, id); err != nil {
			w.log.Error("waitlist sweep failed",
				zap.String("group_id", id.Hex()), zap.Error(err))
		}
	}
}
