package buffer

import "sync/atomic"

// DataCell is the degenerate, capacity-1 buffer described at the end
// of spec §4.B: a single named typed slot with last-writer-wins Set
// and atomic Get, used as the backing store for dataobj ports.
//
// It is a single-writer seqlock: Set increments a sequence counter
// around the write (odd during the write, even once stable); Get
// retries while the sequence is odd, or changed across the read. This
// gives bounded-latency publication for values of any size — spec §3
// explicitly does not require wait-freedom for writers of objects
// larger than pointer-width, only bounded latency, which a seqlock
// provides (a Get can be delayed by a concurrent Set, but can never
// observe a torn value).
type DataCell[T any] struct {
	seq   atomic.Uint64
	value T
}

// NewDataCell creates a DataCell holding the zero value of T.
func NewDataCell[T any]() *DataCell[T] {
	return &DataCell[T]{}
}

// Set publishes a new value. Only one goroutine may call Set on a
// given DataCell at a time (the spec's single-writer invariant);
// concurrent Sets are not synchronized against each other, only
// against Get.
func (c *DataCell[T]) Set(v T) {
	c.seq.Add(1) // now odd: write in flight
	c.value = v
	c.seq.Add(1) // now even: write complete
}

// Get reads the current value into dst, returning once a
// non-torn read is obtained.
func (c *DataCell[T]) Get(dst *T) {
	for {
		s1 := c.seq.Load()
		if s1&1 != 0 {
			continue // writer in flight, retry
		}
		v := c.value
		s2 := c.seq.Load()
		if s1 == s2 {
			*dst = v
			return
		}
	}
}

// Load is a convenience wrapper around Get that returns the value
// directly.
func (c *DataCell[T]) Load() T {
	var v T
	c.Get(&v)
	return v
}
