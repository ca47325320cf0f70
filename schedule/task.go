// Package schedule implements the multi-priority periodic scheduler
// from spec §4.D: bounded slip, cooperative single-stepping per
// period, and safe start/stop of many tasks at multiple rates.
//
// Two implementations of equal standing are provided: TaskTimer (a
// single-thread multiplexed timer for a group of tasks sharing one
// priority class) and PerTaskThread (one goroutine per task). Both
// drive the same Task type, which owns the Idle/Running/Error state
// machine and the slip-detection bookkeeping, so the scheduling policy
// (how a task gets woken up) is decoupled from the task-lifecycle
// contract (how a task is started, stepped, and stopped).
package schedule

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/roman-aguilera/rtkernel/clock"
)

// PriorityClass mirrors spec §3's priority classes. Where the host OS
// exposes a scheduling priority/nice knob, it's communicated via
// PriorityHinter (see priority.go); otherwise it's an ordering hint
// within a single-thread multiplexer only.
type PriorityClass int

const (
	Hard PriorityClass = iota
	Soft
	NonRealTime
)

func (p PriorityClass) String() string {
	switch p {
	case Hard:
		return "Hard"
	case Soft:
		return "Soft"
	case NonRealTime:
		return "NonRealTime"
	default:
		return "Unknown"
	}
}

// Runnable is the capability contract a Task drives, per spec §3:
// Initialize is called exactly once per Idle->Running transition,
// Finalize exactly once per Running->Idle, Step at most once per
// elapsed period while Running.
type Runnable interface {
	Initialize() bool
	Step()
	Finalize()
}

// enrollment is the narrow interface a Task needs from whichever
// scheduler it's registered with, so Task itself stays scheduler-
// agnostic.
type enrollment interface {
	enroll(t *Task)
	remove(t *Task)
}

// TaskStats reports the slip-detection counters for a Task.
type TaskStats struct {
	MissedSteps uint64
	LastElapsed time.Duration
}

// SlipFunc is invoked (from the scheduling goroutine, never
// concurrently with itself for a given Task) whenever a step is
// detected to have slipped (elapsed > 2*period). Implementations
// should not block.
type SlipFunc func(t *Task, elapsed time.Duration)

// Task is a periodic task record: {period, priority_class, runner,
// state, missed_steps} from spec §3, plus the synchronization needed
// to make Start/Stop/Run safe under concurrent invocation.
type Task struct {
	name      string
	period    time.Duration
	priority  PriorityClass
	scheduler enrollment
	clockSrc  clock.Source
	onSlip    SlipFunc

	// lifecycleMu guards Start/Run transitions and the runner field.
	// Stop has its own, separate synchronization (stopGate/stepMu)
	// because Stop must remain idempotent and cooperative even while
	// a step is mid-flight, which a single coarse mutex covering both
	// Start and Step would not allow.
	lifecycleMu sync.Mutex
	runner      Runnable
	state       *taskState

	// stopGate ensures only one concurrent Stop() call performs the
	// remove+finalize sequence; others block until it completes, then
	// observe the already-Idle state and return false. This is the
	// idempotence-under-contention behavior from spec §8 scenario 4.
	stopGate sync.Mutex

	// stepMu is held for the duration of a single Step() invocation.
	// Stop acquires it before calling Finalize, which is what makes
	// "stop() waits for the in-flight step to complete" true: Stop
	// cannot proceed past stepMu.Lock() until any Step() holding it
	// has returned.
	stepMu sync.Mutex
	active atomic.Bool

	lastFire    clock.Ticks
	missedSteps atomic.Uint64
	lastElapsed atomic.Int64 // nanoseconds

	// perThreadStop is set by PerTaskThread.enroll and closed by
	// PerTaskThread.remove. Unused by TaskTimer.
	perThreadStop chan struct{}
}

// NewTask creates a Task with the given period, priority class, and
// runner. The task starts in the Idle state; call Start to enroll it
// with a scheduler (bound beforehand via TaskTimer.Add or
// PerTaskThread.Add).
func NewTask(name string, period time.Duration, priority PriorityClass, runner Runnable) *Task {
	if period <= 0 {
		panic("schedule: NewTask: period must be positive")
	}
	if runner == nil {
		panic("schedule: NewTask: runner must not be nil")
	}
	return &Task{
		name:     name,
		period:   period,
		priority: priority,
		runner:   runner,
		state:    newTaskState(),
		clockSrc: clock.Default,
	}
}

// Name returns the task's diagnostic name.
func (t *Task) Name() string { return t.name }

// Period returns the task's nominal period.
func (t *Task) Period() time.Duration { return t.period }

// Priority returns the task's priority class.
func (t *Task) Priority() PriorityClass { return t.priority }

// State returns the current lifecycle state.
func (t *Task) State() TaskState { return t.state.Load() }

// Stats returns a snapshot of the slip-detection counters.
func (t *Task) Stats() TaskStats {
	return TaskStats{
		MissedSteps: t.missedSteps.Load(),
		LastElapsed: time.Duration(t.lastElapsed.Load()),
	}
}

// OnSlip registers a callback invoked whenever a step slips (elapsed >
// 2*period). Must be set before Start; not safe for concurrent use
// with Start/Stop.
func (t *Task) OnSlip(fn SlipFunc) { t.onSlip = fn }

// bindScheduler attaches the enrollment target a Start call will use.
// Called by TaskTimer.Add / PerTaskThread.Add before the caller invokes
// Start.
func (t *Task) bindScheduler(s enrollment) { t.scheduler = s }

// Start transitions Idle->Running: calls runner.Initialize(); if it
// returns false, the task moves to Error and Start returns false.
// Otherwise the task is enrolled with its scheduler and Start returns
// true. Calling Start while not Idle is a no-op returning false (spec
// §4.D, §8 boundary behavior).
func (t *Task) Start() bool {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()

	if t.state.Load() != Idle {
		return false
	}
	if !t.runner.Initialize() {
		t.state.Store(Error)
		return false
	}
	t.lastFire = t.clockSrc.Now()
	t.missedSteps.Store(0)
	t.active.Store(true)
	t.state.Store(Running)
	t.scheduler.enroll(t)
	return true
}

// Stop transitions Running->Idle: removes the task from its
// scheduler's active set (so no further Step begins), waits for any
// in-flight Step to complete, then calls Finalize. Stop is idempotent
// under concurrent invocation: only one caller performs the sequence;
// others block until it completes and then return false (spec §8
// scenario 4).
func (t *Task) Stop() bool {
	if !t.stopGate.TryLock() {
		t.stopGate.Lock()
		t.stopGate.Unlock()
		return false
	}
	defer t.stopGate.Unlock()

	t.lifecycleMu.Lock()
	if t.state.Load() != Running {
		t.lifecycleMu.Unlock()
		return false
	}
	t.lifecycleMu.Unlock()

	// No new Step will begin past this point: tryStep rechecks active
	// both before and after acquiring stepMu.
	t.active.Store(false)

	// Remove from the scheduler's active set first (spec: "the task is
	// first removed from its scheduler's active set ... so no further
	// step() will begin"), then wait for any in-flight step.
	t.scheduler.remove(t)
	t.stepMu.Lock()
	t.runner.Finalize()
	t.stepMu.Unlock()

	t.state.Store(Idle)
	return true
}

// Run swaps the task's runner. Fails with ErrTaskBusy while Running.
func (t *Task) Run(newRunner Runnable) error {
	if newRunner == nil {
		panic("schedule: Run: newRunner must not be nil")
	}
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()
	if t.state.Load() == Running {
		return ErrTaskBusy
	}
	t.runner = newRunner
	return nil
}

// Reset transitions Error->Idle, allowing Start to be retried after an
// Initialize failure.
func (t *Task) Reset() error {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()
	if !t.state.CompareAndSwap(Error, Idle) {
		return ErrTaskNotIdle
	}
	return nil
}

// tryStep is invoked by a scheduler implementation once per tick, for
// every enrolled task. It is a no-op unless at least one period has
// elapsed since the task's last fire. On a slipped step (elapsed >
// 2*period), it still invokes Step exactly once and increments
// missedSteps exactly once - it never catches up by invoking Step
// multiple times (spec §4.D slip policy, §8 scenario 2).
func (t *Task) tryStep(now clock.Ticks) {
	if !t.active.Load() {
		return
	}
	if !t.stepMu.TryLock() {
		// A Stop (or another tryStep, for a misconfigured scheduler
		// that calls concurrently) is already holding the step lock;
		// skip this tick rather than blocking the dispatch loop.
		return
	}
	defer t.stepMu.Unlock()

	if !t.active.Load() {
		return
	}

	elapsed := now.Sub(t.lastFire)
	if elapsed < t.period {
		return
	}
	t.lastFire = now
	t.lastElapsed.Store(int64(elapsed))

	if elapsed > 2*t.period {
		t.missedSteps.Add(1)
		if t.onSlip != nil {
			t.onSlip(t, elapsed)
		}
	}

	t.runner.Step()
}
