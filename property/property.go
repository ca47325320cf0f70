// Package property implements spec §4.G's introspection contract: a
// closed primitive set, a Property[T] wrapper carrying a name and
// description alongside a value, and an ordered Bag of heterogeneous
// properties (including nested bags) that a format-specific
// Marshaller/Demarshaller pair can visit without knowing the concrete
// T of any individual property.
package property

import "fmt"

// Primitive is the closed set spec §4.G names: bool, char (rune),
// int, uint, double (float64), string, bag. int64/uint64 stand in for
// "int"/"uint" to give every primitive a single, fixed-width Go type
// (idiomatic: a real port wouldn't want Property[int] and
// Property[int32] to be different primitive kinds).
type Primitive interface {
	bool | rune | int64 | uint64 | float64 | string
}

// Property is `{ name, description, value: T }` from spec §4.G, for
// any T in Primitive. Bag properties are represented separately (see
// Entry), since *Bag doesn't satisfy Primitive but is still a leaf a
// Marshaller must visit.
type Property[T Primitive] struct {
	Name        string
	Description string
	value       T
}

// NewProperty creates a Property with the given initial value.
func NewProperty[T Primitive](name, description string, value T) *Property[T] {
	return &Property[T]{Name: name, Description: description, value: value}
}

// Get returns the current value.
func (p *Property[T]) Get() T { return p.value }

// Set assigns a new value.
func (p *Property[T]) Set(v T) { p.value = v }

// Update performs a deep update from src: unlike Refresh it copies
// Name and Description as well as the value, and it is not treated as
// real-time safe. Returns false if src is nil.
func (p *Property[T]) Update(src *Property[T]) bool {
	if src == nil {
		return false
	}
	p.Name = src.Name
	p.Description = src.Description
	p.value = src.value
	return true
}

// Copy performs a full structural clone from src.
func (p *Property[T]) Copy(src *Property[T]) bool {
	return p.Update(src)
}

// Refresh copies only the value from src, assuming identical
// structure (same Name/Description already). Real-time safe: no
// allocation, fixed time, matching spec §4.G exactly.
func (p *Property[T]) Refresh(src *Property[T]) bool {
	if src == nil {
		return false
	}
	p.value = src.value
	return true
}

// Entry is one heterogeneous slot in a Bag: exactly one of Bool, Rune,
// Int, Uint, Float, Str, or Sub is non-nil, mirroring the visitor
// pattern's closed primitive set plus the nested-bag case.
type Entry struct {
	Bool  *Property[bool]
	Rune  *Property[rune]
	Int   *Property[int64]
	Uint  *Property[uint64]
	Float *Property[float64]
	Str   *Property[string]
	Sub   *Bag
}

// Name returns the entry's name, regardless of which variant is set.
func (e Entry) Name() string {
	switch {
	case e.Bool != nil:
		return e.Bool.Name
	case e.Rune != nil:
		return e.Rune.Name
	case e.Int != nil:
		return e.Int.Name
	case e.Uint != nil:
		return e.Uint.Name
	case e.Float != nil:
		return e.Float.Name
	case e.Str != nil:
		return e.Str.Name
	case e.Sub != nil:
		return e.Sub.Name
	default:
		return ""
	}
}

// Bag is an ordered collection of properties plus nested bags (spec
// §4.G). Entries preserve insertion order, since marshalled output
// (e.g. XML element order) is expected to be stable.
type Bag struct {
	Name        string
	Description string
	entries     []Entry
	index       map[string]int
}

// NewBag creates an empty, named Bag.
func NewBag(name, description string) *Bag {
	return &Bag{Name: name, Description: description, index: make(map[string]int)}
}

// Add appends an entry, returning an error if its name collides with
// an existing one in this bag.
func (b *Bag) Add(e Entry) error {
	name := e.Name()
	if _, exists := b.index[name]; exists {
		return fmt.Errorf("property: duplicate name %q in bag %q", name, b.Name)
	}
	b.index[name] = len(b.entries)
	b.entries = append(b.entries, e)
	return nil
}

// Entries returns the bag's entries in insertion order.
func (b *Bag) Entries() []Entry { return b.entries }

// Find looks up an entry by name.
func (b *Bag) Find(name string) (Entry, bool) {
	i, ok := b.index[name]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Marshaller is implemented by a concrete property wire format (see
// xmlprop.Encoder) bound to a destination.
type Marshaller interface {
	MarshalBag(b *Bag) error
}

// Demarshaller is the reverse: parse a wire format into a Bag (see
// xmlprop.Decoder).
type Demarshaller interface {
	DemarshalBag() (*Bag, error)
}
