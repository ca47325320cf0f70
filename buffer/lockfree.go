package buffer

import "sync/atomic"

// lockFree is the single-writer/single-reader lock-free ring buffer
// described in spec §4.B. head and tail are free-running counters that
// are masked only when indexing a slot, so Push succeeds iff
// tail-head < cap (every one of the cap slots is usable) and Pop
// succeeds iff head != tail. The mask-based indexing technique is
// adapted from catrate/ring.go's ringBuffer.mask, but unlike that ring
// (which is MPSC-unsafe and grows on Insert), this buffer never
// resizes and is only safe with exactly one producer goroutine and
// exactly one consumer goroutine concurrently, per the invariant in
// spec §3.
//
// Memory ordering: the producer stores the payload into slots before
// advancing tail (a store-release on tail); the consumer loads tail
// (a load-acquire) before reading the slot it names. Go's atomic
// package provides sequentially consistent operations, a strictly
// stronger guarantee than the release/acquire the spec requires, so
// the invariant holds.
type lockFree[T any] struct {
	mask  uint64
	slots []T
	head  atomic.Uint64 // owned by the single reader
	tail  atomic.Uint64 // owned by the single writer
}

// NewLockFree creates a lock-free SPSC Buffer. capacity is rounded up
// to the next power of two (minimum 2), since the mask-based index
// arithmetic requires it.
func NewLockFree[T any](capacity int) Buffer[T] {
	if capacity < 1 {
		panic("buffer: NewLockFree: capacity must be positive")
	}
	c := nextPow2(capacity)
	return &lockFree[T]{
		mask:  uint64(c) - 1,
		slots: make([]T, c),
	}
}

func nextPow2(n int) int {
	if n&(n-1) == 0 && n >= 2 {
		return n
	}
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

func (b *lockFree[T]) Cap() int { return len(b.slots) }

func (b *lockFree[T]) Len() int {
	// Snapshot order doesn't matter for an approximate Len: we read
	// tail then head, which can only under-report concurrent activity,
	// never over-report past Cap().
	tail := b.tail.Load()
	head := b.head.Load()
	return int(tail - head)
}

func (b *lockFree[T]) Push(item T) bool {
	tail := b.tail.Load()
	head := b.head.Load()
	if tail-head >= uint64(len(b.slots)) {
		return false
	}
	b.slots[tail&b.mask] = item
	b.tail.Store(tail + 1)
	return true
}

func (b *lockFree[T]) PushSlice(src []T) int {
	n := 0
	for _, v := range src {
		if !b.Push(v) {
			break
		}
		n++
	}
	return n
}

func (b *lockFree[T]) Pop(dst *T) bool {
	head := b.head.Load()
	tail := b.tail.Load()
	if head == tail {
		return false
	}
	*dst = b.slots[head&b.mask]
	var zero T
	b.slots[head&b.mask] = zero // drop the reference for GC
	b.head.Store(head + 1)
	return true
}

func (b *lockFree[T]) PopSlice(dst []T) int {
	n := 0
	for n < len(dst) {
		if !b.Pop(&dst[n]) {
			break
		}
		n++
	}
	return n
}

func (b *lockFree[T]) Clear() {
	// Clear is not meant to be called concurrently with Push/Pop (it
	// mutates both head and tail, which belong to different sides);
	// callers must quiesce the buffer first, matching the spec's
	// "single-writer/single-reader" ownership model.
	head := b.head.Load()
	tail := b.tail.Load()
	var zero T
	for head != tail {
		b.slots[head&b.mask] = zero
		head++
	}
	b.head.Store(head)
	b.tail.Store(head)
}
