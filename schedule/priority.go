package schedule

// PriorityHinter is implemented by schedulers that can communicate a
// task's PriorityClass to the host OS scheduler (e.g. via a nice
// value or a real-time scheduling policy). Neither TaskTimer nor
// PerTaskThread implements it in this module: doing so correctly
// needs OS-specific syscalls (sched_setscheduler on Linux) that have
// no portable stdlib or corpus-library equivalent, so PriorityClass is
// carried as an ordering/documentation hint only. A future
// linux-specific scheduler implementation can satisfy this interface
// without changing Task or the other scheduler types.
type PriorityHinter interface {
	HintPriority(class PriorityClass) error
}
