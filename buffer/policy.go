package buffer

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Policy is the BufferPolicy collaborator described in spec §4.B: it
// is selected independently of the Buffer implementation, and composed
// with it by PolicyBuffer. A Policy observes pushes and pops but never
// inspects buffer contents.
type Policy interface {
	// AfterPush is invoked after a successful Push.
	AfterPush()

	// BeforePop blocks (if the policy requires it) before a Pop
	// attempt. ctx governs how long a blocking policy will wait.
	BeforePop(ctx context.Context) error
}

// NonBlockingPolicy never blocks; AfterPush and BeforePop are no-ops.
type NonBlockingPolicy struct{}

func (NonBlockingPolicy) AfterPush()                          {}
func (NonBlockingPolicy) BeforePop(context.Context) error { return nil }

// BlockingPolicy implements the spec's "counting semaphore, signalled
// on push, waited on by pop" policy using golang.org/x/sync/semaphore's
// weighted semaphore (weight 1 per item, capped at the buffer's
// capacity so the semaphore can never report more available permits
// than the buffer can hold).
type BlockingPolicy struct {
	sem *semaphore.Weighted
}

// NewBlockingPolicy creates a BlockingPolicy bounded at capacity
// permits; capacity should match the Buffer it's paired with.
func NewBlockingPolicy(capacity int) *BlockingPolicy {
	if capacity < 1 {
		panic("buffer: NewBlockingPolicy: capacity must be positive")
	}
	sem := semaphore.NewWeighted(int64(capacity))
	// Start with every permit held, so BeforePop waits until an
	// AfterPush releases one.
	sem.TryAcquire(int64(capacity))
	return &BlockingPolicy{sem: sem}
}

// AfterPush releases one permit, waking a blocked BeforePop waiter.
func (p *BlockingPolicy) AfterPush() {
	p.sem.Release(1)
}

// BeforePop blocks until a permit is available or ctx is done.
func (p *BlockingPolicy) BeforePop(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// PolicyBuffer composes a Buffer and a Policy without either knowing
// about the other, per spec §4.B ("the buffer does not itself know
// whether callers block").
type PolicyBuffer[T any] struct {
	Buffer[T]
	Policy Policy
}

// NewPolicyBuffer wraps buf with policy.
func NewPolicyBuffer[T any](buf Buffer[T], policy Policy) *PolicyBuffer[T] {
	return &PolicyBuffer[T]{Buffer: buf, Policy: policy}
}

// PushBlocking pushes item, notifying the policy on success.
func (p *PolicyBuffer[T]) PushBlocking(item T) bool {
	ok := p.Buffer.Push(item)
	if ok {
		p.Policy.AfterPush()
	}
	return ok
}

// PopBlocking blocks (per the policy) then pops into dst.
func (p *PolicyBuffer[T]) PopBlocking(ctx context.Context, dst *T) (bool, error) {
	if err := p.Policy.BeforePop(ctx); err != nil {
		return false, err
	}
	return p.Buffer.Pop(dst), nil
}
