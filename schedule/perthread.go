package schedule

import (
	"time"

	"github.com/roman-aguilera/rtkernel/clock"
)

// PerTaskThread is the other scheduling mode from spec §4.D: each
// enrolled task gets its own goroutine and its own time.Ticker set to
// the task's period. This trades the single-thread multiplexer's
// shared-resolution compromise for one extra goroutine per task, and
// is appropriate for a small number of Hard-priority tasks that must
// not share a dispatch loop with anything else.
type PerTaskThread struct {
	clockSrc clock.Source
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewPerTaskThread creates a scheduler that, once a task is enrolled,
// runs a dedicated goroutine ticking at the task's own period.
func NewPerTaskThread() *PerTaskThread {
	return &PerTaskThread{clockSrc: clock.Default}
}

// Add binds t to this scheduler. t.Start() must be called separately.
func (pt *PerTaskThread) Add(t *Task) {
	t.bindScheduler(pt)
}

// enroll spins up the per-task goroutine.
func (pt *PerTaskThread) enroll(t *Task) {
	stop := make(chan struct{})
	t.perThreadStop = stop
	go pt.run(t, stop)
}

// remove signals the per-task goroutine to exit. It does not wait for
// the goroutine to observe the signal; Task.Stop's own stepMu
// acquisition is what guarantees no further Step runs after remove
// returns.
func (pt *PerTaskThread) remove(t *Task) {
	if t.perThreadStop != nil {
		close(t.perThreadStop)
		t.perThreadStop = nil
	}
}

func (pt *PerTaskThread) run(t *Task, stop chan struct{}) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.tryStep(pt.clockSrc.Now())
		}
	}
}
