// Package component defines the component and extension contracts a
// kernel drives each period (spec §4.F): the four lifecycle hooks, the
// three-call-per-period dataflow contract (Pull/Calculate/Push), and
// the facet mechanism by which a component opts into optional
// capabilities (properties, scripting, events, reporting) that
// extensions discover at load time.
package component

import (
	"context"
	"errors"

	"github.com/roman-aguilera/rtkernel/property"
)

// Sentinel errors surfaced by extension binding, following the
// package-prefixed sentinel convention used throughout the corpus.
var (
	// ErrFacetNotSupported is returned by an Extension's BindFacet when
	// the component does not implement the facet interface the
	// extension requires.
	ErrFacetNotSupported = errors.New("component: component does not support required facet")
)

// Component is the unit the kernel schedules: loaded once, started
// when the kernel starts, stepped every period in pull/calculate/push
// order alongside every other component, stopped when the kernel
// stops, unloaded at most once.
//
// ComponentLoaded is called once, by Kernel.AddComponent, before the
// component joins the kernel's component list. ComponentStartup is
// called once per Kernel.Initialize; returning false aborts the kernel
// start and rolls back any component already started (spec §4.E).
// ComponentShutdown mirrors Startup on Kernel.Finalize. ComponentUnloaded
// is called once, when the component is permanently removed from a
// kernel.
type Component interface {
	Name() string

	ComponentLoaded() bool
	ComponentStartup() bool
	ComponentShutdown()
	ComponentUnloaded()

	// Pull reads from the kernel's Input/Model bags into the
	// component's own state. Called once per period, before Calculate.
	Pull(ctx context.Context)
	// Calculate advances the component's internal state. Called once
	// per period, between Pull and Push.
	Calculate(ctx context.Context)
	// Push writes the component's results into the kernel's
	// SetPoint/Output bags. Called once per period, after Calculate.
	Push(ctx context.Context)
}

// Facet is the empty interface a component's optional capability
// interfaces satisfy; it exists purely as a readable name at call
// sites (BindFacet(c Component) rather than BindFacet(c any)).
type Facet = any

// PropertyFacet is implemented by components that expose a
// property.Bag for introspection/configuration. Resolved via type
// assertion, not a capability tag: `if p, ok := c.(PropertyFacet); ok`.
type PropertyFacet interface {
	Facet
	// Properties returns the component's property bag. The returned
	// bag is shared, not copied; mutations through it are visible to
	// the component's own state if the component chose to back its
	// properties with live fields.
	Properties() *property.Bag
	// UpdateProperties applies a previously-saved bag (same shape as
	// Properties would return) to the component's live state,
	// returning false if the bag's shape is incompatible. Driven by a
	// property-persistence extension at load time (spec §6's
	// configure_on_load).
	UpdateProperties(b *property.Bag) bool
}

// ScriptingFacet is implemented by components that expose named,
// invocable operations (spec's "scripting" capability).
type ScriptingFacet interface {
	Facet
	// Operation looks up a named operation, returning ok=false if the
	// component does not expose one by that name.
	Operation(name string) (fn func(args ...any) (any, error), ok bool)
}

// EventFacet is implemented by components that emit named events
// through the kernel's event.Service.
type EventFacet interface {
	Facet
	// Events returns the names of events this component may emit, for
	// introspection/diagnostics only — actual Declare/Emit calls go
	// through event.Service directly.
	Events() []string
}

// ReportingFacet is implemented by components that declare whether
// their per-phase timings are of interest. The kernel does not consult
// it: Kernel.Report records timings for every component, whether or
// not it implements this facet.
type ReportingFacet interface {
	Facet
	// ReportingEnabled reports whether this component opts into timing
	// capture; a component can implement the interface but still
	// decline at runtime (e.g. a user-toggled config flag).
	ReportingEnabled() bool
}

// Extension is the kernel-level hook model from spec §4.F: extensions
// are stepped once per period (alongside, not instead of, components),
// and may require specific facets from every component they manage.
type Extension interface {
	Name() string
	Initialize() bool
	Step()
	Finalize()

	// BindFacet is called once per component, at AddComponent time.
	// bound=false, err=nil means the extension simply doesn't apply to
	// this component (e.g. a reporting extension skipping a component
	// without ReportingFacet) - that is not an error. A non-nil err
	// (typically ErrFacetNotSupported) means the component is
	// incompatible with this extension in a way the kernel should
	// refuse to proceed over; callers decide policy.
	BindFacet(c Component) (bound bool, err error)
	// UnbindFacet releases any state BindFacet associated with c. Safe
	// to call even if BindFacet never bound c.
	UnbindFacet(c Component)
}
