// Package buffer provides the bounded FIFO primitives the framework
// uses to publish port values and bounded event data between a hard
// real-time writer and non-real-time readers.
//
// Two Buffer implementations exist, selected at construction: NewLockFree
// (single-writer/single-reader, lock-free) and NewLocked (mutex-guarded,
// any number of writers). A BufferPolicy is composed separately from
// the buffer implementation, so the buffer itself never knows whether
// its callers block.
package buffer

// Buffer is a bounded FIFO of T. Push on a full buffer returns false
// and leaves the buffer unmodified; Pop on an empty buffer returns
// false and leaves dst unmodified. Implementations must satisfy:
// 0 <= Len() <= Cap(), and the count of successful Pushes minus
// successful Pops equals Len() at any external observation point.
type Buffer[T any] interface {
	// Push appends item, returning false if the buffer is full.
	Push(item T) bool

	// PushSlice appends as many items from src as fit, returning the
	// number actually pushed (which may be less than len(src)).
	PushSlice(src []T) int

	// Pop removes the oldest item into *dst, returning false (and
	// leaving *dst unmodified) if the buffer is empty.
	Pop(dst *T) bool

	// PopSlice removes up to len(dst) items into dst, returning the
	// number actually popped.
	PopSlice(dst []T) int

	// Len returns the current number of buffered items.
	Len() int

	// Cap returns the fixed capacity of the buffer.
	Cap() int

	// Clear discards all buffered items.
	Clear()
}
