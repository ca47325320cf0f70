package schedule

import (
	"sync"
	"time"

	"github.com/roman-aguilera/rtkernel/clock"
)

// TaskTimer is a single-thread multiplexed scheduler: one goroutine,
// driven by a single time.Ticker, walks every enrolled task on each
// tick and calls tryStep, which is itself responsible for deciding
// whether that particular task's period has elapsed. This is the
// "tasks of differing periods sharing one thread" scheduling mode from
// spec §4.D.
//
// The tick resolution should be chosen no coarser than the GCD of the
// enrolled tasks' periods (see NewTaskTimer doc). A tick coarser than a
// task's own period delays every step of that task, and tryStep counts
// a step as slipped whenever the delay pushes elapsed past 2*period;
// with a fine enough tick, slips come only from steps that overrun,
// as in §8 scenario 2.
type TaskTimer struct {
	resolution time.Duration
	clockSrc   clock.Source

	mu      sync.Mutex
	tasks   map[*Task]struct{}
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewTaskTimer creates a TaskTimer that polls enrolled tasks every
// resolution. Pick resolution as the greatest common divisor of the
// periods you intend to enroll, or simply the shortest period, to
// avoid spurious slip detection.
func NewTaskTimer(resolution time.Duration) *TaskTimer {
	if resolution <= 0 {
		panic("schedule: NewTaskTimer: resolution must be positive")
	}
	return &TaskTimer{
		resolution: resolution,
		clockSrc:   clock.Default,
		tasks:      make(map[*Task]struct{}),
	}
}

// Add binds t to this timer. t.Start() must be called separately to
// actually begin stepping it; Add only wires the enrollment target.
func (tt *TaskTimer) Add(t *Task) {
	t.bindScheduler(tt)
}

// enroll is called by Task.Start once Initialize succeeds.
func (tt *TaskTimer) enroll(t *Task) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.tasks[t] = struct{}{}
}

// remove is called by Task.Stop.
func (tt *TaskTimer) remove(t *Task) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	delete(tt.tasks, t)
}

// Run starts the dispatch loop and blocks until Shutdown is called.
// Run is not reentrant: call it from one goroutine only.
func (tt *TaskTimer) Run() {
	tt.mu.Lock()
	if tt.running {
		tt.mu.Unlock()
		return
	}
	tt.running = true
	tt.stopCh = make(chan struct{})
	tt.doneCh = make(chan struct{})
	tt.mu.Unlock()

	ticker := time.NewTicker(tt.resolution)
	defer ticker.Stop()
	defer close(tt.doneCh)

	for {
		select {
		case <-tt.stopCh:
			return
		case <-ticker.C:
			tt.dispatch()
		}
	}
}

// dispatch walks the current task set once. Tasks are snapshotted
// under the lock, then stepped without holding it, so enroll/remove
// calls from concurrent Start/Stop never block on a slow Step.
func (tt *TaskTimer) dispatch() {
	tt.mu.Lock()
	snapshot := make([]*Task, 0, len(tt.tasks))
	for t := range tt.tasks {
		snapshot = append(snapshot, t)
	}
	tt.mu.Unlock()

	now := tt.clockSrc.Now()
	for _, t := range snapshot {
		t.tryStep(now)
	}
}

// Shutdown stops the dispatch loop and waits for Run to return. Tasks
// already enrolled are left Running; callers should Stop each task
// themselves before or after Shutdown as appropriate.
func (tt *TaskTimer) Shutdown() {
	tt.mu.Lock()
	if !tt.running {
		tt.mu.Unlock()
		return
	}
	tt.running = false
	close(tt.stopCh)
	done := tt.doneCh
	tt.mu.Unlock()

	<-done
}
