// Package dataobj implements the typed data object registry (ports)
// described in spec §4.C: named typed slots, organized into four
// role-tagged bags (Input, Model, SetPoint, Output), with bind-time
// type checking so the per-period critical path never needs dynamic
// dispatch on the value.
package dataobj

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/roman-aguilera/rtkernel/buffer"
)

// Sentinel errors, following the teacher corpus's package-prefixed
// sentinel-error convention (eventloop.ErrLoopAlreadyRunning etc).
var (
	// ErrDuplicate is returned by Register when name already exists in
	// the bag.
	ErrDuplicate = errors.New("dataobj: name already registered")

	// ErrNotFound is returned by Bind when name has not been
	// registered.
	ErrNotFound = errors.New("dataobj: name not found")

	// ErrTypeMismatch is returned by Bind when the registered type
	// differs from the type requested by the caller.
	ErrTypeMismatch = errors.New("dataobj: type mismatch")
)

// slot is the untyped entry stored in a Bag: the cell itself (as an
// `any` wrapping a *buffer.DataCell[T]`) plus its runtime type tag.
type slot struct {
	typ  reflect.Type
	cell any // *buffer.DataCell[T]
}

// Bag is a name -> typed data-object handle map, with a fixed role
// (Input, Model, SetPoint, or Output). Names are unique within a bag.
//
// Registration (Register) happens during kernel configuration, before
// any component is started, and is not safe for concurrent use with
// itself. Bind is safe to call concurrently with other Binds once
// registration is complete (it never mutates the bag).
type Bag struct {
	role    Role
	entries map[string]*slot
}

// Role identifies which of the kernel's four bags a Bag is.
type Role int

const (
	RoleInput Role = iota
	RoleModel
	RoleSetPoint
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "Input"
	case RoleModel:
		return "Model"
	case RoleSetPoint:
		return "SetPoint"
	case RoleOutput:
		return "Output"
	default:
		return "Unknown"
	}
}

// NewBag creates an empty Bag for the given role.
func NewBag(role Role) *Bag {
	return &Bag{role: role, entries: make(map[string]*slot)}
}

// Role returns the bag's role.
func (b *Bag) Role() Role { return b.role }

// Register creates a new named data object of type T with the given
// initial value. It fails with ErrDuplicate if name already exists.
// Register is called during kernel configuration and must not be
// called concurrently with Bind or with itself.
func Register[T any](b *Bag, name string, initial T) (Handle[T], error) {
	if _, exists := b.entries[name]; exists {
		return Handle[T]{}, fmt.Errorf("%w: %q in %s bag", ErrDuplicate, name, b.role)
	}
	cell := buffer.NewDataCell[T]()
	cell.Set(initial)
	b.entries[name] = &slot{typ: reflect.TypeOf(initial), cell: cell}
	return Handle[T]{name: name, cell: cell}, nil
}

// Bind looks up name and returns a typed Handle, failing with
// ErrNotFound if absent or ErrTypeMismatch if the registered type
// differs from T. This is the bind-time type check spec §4.C
// requires: it happens once, not on every Get.
func Bind[T any](b *Bag, name string) (Handle[T], error) {
	s, ok := b.entries[name]
	if !ok {
		return Handle[T]{}, fmt.Errorf("%w: %q in %s bag", ErrNotFound, name, b.role)
	}
	var want T
	wantType := reflect.TypeOf(want)
	if s.typ != wantType {
		return Handle[T]{}, fmt.Errorf("%w: %q in %s bag: registered as %s, requested as %s",
			ErrTypeMismatch, name, b.role, s.typ, wantType)
	}
	cell, ok := s.cell.(*buffer.DataCell[T])
	if !ok {
		// Should be unreachable given the reflect.Type check above, but
		// guards against the reflect.Type comparison being fooled by
		// identically-shaped but distinct generic instantiations.
		return Handle[T]{}, fmt.Errorf("%w: %q in %s bag: cell type assertion failed",
			ErrTypeMismatch, name, b.role)
	}
	return Handle[T]{name: name, cell: cell}, nil
}

// Names returns the registered names in this bag, in no particular
// order.
func (b *Bag) Names() []string {
	names := make([]string, 0, len(b.entries))
	for n := range b.entries {
		names = append(names, n)
	}
	return names
}

// Handle is a typed reference to a data object, obtained via Bind.
// Components are expected to obtain handles during ComponentStartup
// and hold them until ComponentShutdown; a Handle's zero value is not
// usable (it has no backing cell).
type Handle[T any] struct {
	name string
	cell *buffer.DataCell[T]
}

// Valid reports whether the handle was obtained from a successful
// Bind/Register call.
func (h Handle[T]) Valid() bool { return h.cell != nil }

// Name returns the data object's registered name.
func (h Handle[T]) Name() string { return h.name }

// Get reads the current value. Lock-free; never observes a
// half-written Set (spec §4.C).
func (h Handle[T]) Get() T {
	return h.cell.Load()
}

// Set publishes a new value. Last-writer-wins.
func (h Handle[T]) Set(v T) {
	h.cell.Set(v)
}

// Registry bundles the four role-tagged bags every kernel owns one of.
type Registry struct {
	Input    *Bag
	Model    *Bag
	SetPoint *Bag
	Output   *Bag
}

// NewRegistry creates a Registry with all four bags initialized empty.
func NewRegistry() *Registry {
	return &Registry{
		Input:    NewBag(RoleInput),
		Model:    NewBag(RoleModel),
		SetPoint: NewBag(RoleSetPoint),
		Output:   NewBag(RoleOutput),
	}
}
