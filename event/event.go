// Package event implements the event service from spec §4.H: named,
// typed events with both synchronous (run in the emitting task) and
// asynchronous (drained by a Processor on its own schedule) handlers.
package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/roman-aguilera/rtkernel/internal/rtlog"
)

// Setup-time sentinel errors, matching spec §4.H/§7 exactly.
var (
	ErrNameNotFound       = errors.New("event: name not found")
	ErrWrongArgumentCount = errors.New("event: wrong argument count")
	ErrWrongArgumentTypes = errors.New("event: wrong argument types")
	ErrNonLvalueArgument  = errors.New("event: argument requires writable (addressable) storage")
	ErrAlreadyDeclared    = errors.New("event: name already declared")
)

// SyncHandler runs inline, in the goroutine that calls Emit.
type SyncHandler func(args ...any) error

// declaration is the typed signature + handler set for one event name.
type declaration struct {
	signature []reflect.Type
	sync      []SyncHandler
	async     []asyncSubscription
}

type asyncSubscription struct {
	proc    *Processor
	handler SyncHandler
}

// Service is the event registry/dispatcher a Kernel and its components
// share. Declare must complete before any concurrent Subscribe/Emit;
// once events are declared, Subscribe and Emit are safe for concurrent
// use.
type Service struct {
	log rtlog.Logger

	mu    sync.RWMutex
	names map[string]*declaration
}

// NewService creates an empty Service. log may be nil, in which case
// logging is a no-op.
func NewService(log rtlog.Logger) *Service {
	if log == nil {
		log = rtlog.Nop()
	}
	return &Service{log: log, names: make(map[string]*declaration)}
}

// Declare registers name with the given argument signature. Declaring
// the same name twice fails with ErrAlreadyDeclared.
func (s *Service) Declare(name string, signature ...reflect.Type) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyDeclared, name)
	}
	s.names[name] = &declaration{signature: signature}
	return nil
}

// Subscribe registers a synchronous handler for name: it runs inline
// within Emit, in registration order relative to other sync handlers.
func (s *Service) Subscribe(name string, handler SyncHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.names[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	d.sync = append(d.sync, handler)
	return nil
}

// SubscribeAsync registers a handler that Emit enqueues to proc rather
// than calling inline; proc drains it on its own schedule (see
// Processor).
func (s *Service) SubscribeAsync(name string, proc *Processor, handler SyncHandler) error {
	if proc == nil {
		panic("event: SubscribeAsync: proc must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.names[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	d.async = append(d.async, asyncSubscription{proc: proc, handler: handler})
	return nil
}

// Emit validates args against the declared signature, then runs every
// sync handler in registration order, then enqueues a call for every
// async subscription. Emit returns the first sync handler error (after
// running all sync handlers); async handler errors are reported
// through the Processor that runs them, not through Emit.
func (s *Service) Emit(name string, args ...any) error {
	s.mu.RLock()
	d, ok := s.names[name]
	if !ok {
		s.mu.RUnlock()
		return fmt.Errorf("%w: %q", ErrNameNotFound, name)
	}
	if err := checkSignature(d.signature, args); err != nil {
		s.mu.RUnlock()
		return err
	}
	syncHandlers := append([]SyncHandler(nil), d.sync...)
	asyncSubs := append([]asyncSubscription(nil), d.async...)
	s.mu.RUnlock()

	var firstErr error
	for _, h := range syncHandlers {
		if err := h(args...); err != nil {
			s.log.Warn("event: sync handler error", "event", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, sub := range asyncSubs {
		sub.proc.enqueue(asyncCall{handler: sub.handler, args: args})
	}
	return firstErr
}

// checkSignature validates args against a declared signature. A
// pointer-typed slot declares an lvalue out-parameter (spec §4.H's
// "non-const reference" argument, ported as a Go pointer a handler
// writes through); passing a nil pointer for one fails with
// ErrNonLvalueArgument, since there is nothing addressable for a
// handler to write back to.
func checkSignature(sig []reflect.Type, args []any) error {
	if len(sig) != len(args) {
		return fmt.Errorf("%w: want %d, got %d", ErrWrongArgumentCount, len(sig), len(args))
	}
	for i, want := range sig {
		if want == nil {
			continue // untyped/any argument
		}
		got := reflect.TypeOf(args[i])
		if got != want {
			return fmt.Errorf("%w: argument %d: want %s, got %v", ErrWrongArgumentTypes, i, want, got)
		}
		if want.Kind() == reflect.Pointer && reflect.ValueOf(args[i]).IsNil() {
			return fmt.Errorf("%w: argument %d (%s)", ErrNonLvalueArgument, i, want)
		}
	}
	return nil
}
