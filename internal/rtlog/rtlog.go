// Package rtlog is the thin logging seam library packages (kernel,
// event, property/propext) depend on. It exists so that none of those packages
// need to be parameterized over logiface's Event type generic just to
// emit a log line: they depend on the small Logger interface here,
// and only the host boundary (cmd/rtkernelhost) deals with
// logiface.Logger[E] and a concrete backend.
//
// This mirrors the ambient-stack decision to log through
// github.com/joeycumines/logiface everywhere, while keeping the
// library surface non-generic - the adapter in this package is the
// only place that touches logiface directly.
package rtlog

import "github.com/joeycumines/logiface"

// Logger is the logging capability library packages consume. Nil is a
// valid Logger-shaped value is NOT allowed; use Nop() instead.
type Logger interface {
	Debug(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// nopLogger discards everything. Used as the default when a package
// is constructed without an explicit Logger.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a Logger that discards all log calls.
func Nop() Logger { return nopLogger{} }

// Adapter wraps a logiface.Logger[E] so it satisfies Logger. kv pairs
// are added via Builder.Field, which logiface falls back to
// encoding generically when a field type has no dedicated Add* method
// on the backend's Event implementation.
type Adapter[E logiface.Event] struct {
	L *logiface.Logger[E]
}

// New wraps l as a Logger.
func New[E logiface.Event](l *logiface.Logger[E]) Adapter[E] {
	return Adapter[E]{L: l}
}

func (a Adapter[E]) Debug(msg string, kv ...any) { a.log(a.L.Debug(), msg, kv) }
func (a Adapter[E]) Warn(msg string, kv ...any)  { a.log(a.L.Warning(), msg, kv) }
func (a Adapter[E]) Error(msg string, kv ...any) { a.log(a.L.Err(), msg, kv) }

func (a Adapter[E]) log(b *logiface.Builder[E], msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		b = b.Field(key, kv[i+1])
	}
	b.Log(msg)
}
