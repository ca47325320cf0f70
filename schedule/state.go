package schedule

import "sync/atomic"

// TaskState is the per-task state machine from spec §3/§4.D: Idle,
// Running, Error. Unlike the teacher's eventloop.LoopState (which
// additionally models Sleeping/Terminating/Awake for an I/O reactor),
// a periodic task only ever occupies one of these three states -
// transitions between ticks are synchronous and don't need an
// in-between "sleeping" state of their own.
type TaskState uint32

const (
	// Idle is the initial state, and the state after a clean Stop.
	Idle TaskState = iota
	// Running is entered once Initialize succeeds.
	Running
	// Error is entered if Initialize returns false.
	Error
)

func (s TaskState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// taskState is a lock-free state holder, adapted directly from
// eventloop.FastState's atomic-CAS pattern (same TryTransition(from,
// to) bool shape), narrowed to the three-value TaskState enum.
type taskState struct {
	v atomic.Uint32
}

func newTaskState() *taskState {
	s := &taskState{}
	s.v.Store(uint32(Idle))
	return s
}

func (s *taskState) Load() TaskState {
	return TaskState(s.v.Load())
}

func (s *taskState) Store(v TaskState) {
	s.v.Store(uint32(v))
}

func (s *taskState) CompareAndSwap(from, to TaskState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}
