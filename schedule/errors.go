package schedule

import "errors"

// Sentinel errors for the scheduler, following the package-prefixed
// sentinel convention used throughout the corpus (e.g. eventloop's
// ErrLoopAlreadyRunning).
var (
	// ErrTaskBusy is returned by Task.Run when called while the task
	// is Running (spec §4.D: "run(new_runner): fails while Running").
	ErrTaskBusy = errors.New("schedule: task is running, cannot swap runner")

	// ErrTaskNotIdle is returned by Task.Reset when the task is not in
	// the Error state.
	ErrTaskNotIdle = errors.New("schedule: task is not in Error state")
)
