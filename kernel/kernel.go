// Package kernel implements the control kernel from spec §4.E: the
// four-phase pipeline (pull, calculate, push, extensions.step) run
// once per period, in fixed component-registration order, plus
// load/start/stop with rollback-on-failure semantics.
package kernel

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/roman-aguilera/rtkernel/component"
	"github.com/roman-aguilera/rtkernel/dataobj"
	"github.com/roman-aguilera/rtkernel/event"
	"github.com/roman-aguilera/rtkernel/internal/rtlog"
	"github.com/roman-aguilera/rtkernel/property/config"
)

// LifecycleRejected is the pre-declared event emitted whenever a
// component or extension lifecycle hook returns false or a facet bind
// fails (spec §7: "Surface... via the event service, not by aborting
// the period"). Argument: the *LifecycleError.
const LifecycleRejected = "kernel.LifecycleRejected"

// Kernel owns an ordered list of loaded components, the four
// role-tagged data bags, the registered extensions, and kernel-level
// configuration. A Kernel is itself a schedule.Runnable (see Step,
// Initialize, Finalize) so it is scheduled as exactly one periodic
// task, per spec §2.
type Kernel struct {
	*dataobj.Registry

	log    rtlog.Logger
	events *event.Service
	cfg    *config.KernelConfig

	mu         sync.Mutex
	components []component.Component
	extensions []component.Extension
	running    bool

	reportMu sync.Mutex
	report   []PhaseTiming
	reportN  int
}

// PhaseTiming is one sample in the Report() timing snapshot.
type PhaseTiming struct {
	Component string
	Phase     string
	Duration  time.Duration
	At        time.Time
}

// New creates an empty Kernel. cfg and log may be nil (defaults
// apply); events may be nil if the host doesn't need
// LifecycleRejected/diagnostic events.
func New(cfg *config.KernelConfig, events *event.Service, log rtlog.Logger) *Kernel {
	if cfg == nil {
		cfg = &config.KernelConfig{}
	}
	if log == nil {
		log = rtlog.Nop()
	}
	k := &Kernel{
		Registry: dataobj.NewRegistry(),
		log:      log,
		events:   events,
		cfg:      cfg,
		reportN:  256,
	}
	if events != nil {
		// Best-effort: a shared Service across multiple kernels will
		// have this already declared, which is fine.
		_ = events.Declare(LifecycleRejected, reflect.TypeOf((*LifecycleError)(nil)))
	}
	return k
}

// Running reports whether the kernel's periodic task is active.
func (k *Kernel) Running() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

// AddExtension registers an extension. Per spec §4.F's loading order
// invariant, all extensions must be registered before any component is
// loaded; once a component is loaded, extensions registered afterward
// only observe subsequently loaded components.
func (k *Kernel) AddExtension(ext component.Extension) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.extensions = append(k.extensions, ext)
}

// AddComponent loads c: calls ComponentLoaded, then binds every
// registered extension's facet. On facet bind failure, already-bound
// facets are unbound and ComponentUnloaded is invoked, matching the
// symmetric rollback spec.md §4.E requires. Fails with ErrKernelBusy
// while the kernel is running.
func (k *Kernel) AddComponent(c component.Component) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.running {
		return ErrKernelBusy
	}

	if !c.ComponentLoaded() {
		err := &LifecycleError{Component: c.Name(), Phase: PhaseLoad}
		k.reject(err)
		return err
	}

	bound := make([]component.Extension, 0, len(k.extensions))
	for _, ext := range k.extensions {
		ok, err := ext.BindFacet(c)
		if err != nil {
			for _, b := range bound {
				b.UnbindFacet(c)
			}
			c.ComponentUnloaded()
			lerr := &LifecycleError{Component: c.Name(), Phase: PhaseFacetBind, Cause: fmt.Errorf("%w: %w", ErrFacetBindFailed, err)}
			k.reject(lerr)
			return lerr
		}
		if ok {
			bound = append(bound, ext)
		}
	}

	k.components = append(k.components, c)
	return nil
}

// RemoveComponent unloads c symmetrically: unbinds every extension
// facet, then calls ComponentUnloaded. Fails with ErrKernelBusy while
// running.
func (k *Kernel) RemoveComponent(c component.Component) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.running {
		return ErrKernelBusy
	}

	idx := -1
	for i, existing := range k.components {
		if existing == c {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	for _, ext := range k.extensions {
		ext.UnbindFacet(c)
	}
	c.ComponentUnloaded()
	k.components = append(k.components[:idx], k.components[idx+1:]...)
	return nil
}

// Initialize implements schedule.Runnable: componentStartup() on each
// component in load order, rolling back (shutdown in reverse order) on
// the first failure, matching spec.md §4.E exactly.
func (k *Kernel) Initialize() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, c := range k.components {
		if !c.ComponentStartup() {
			err := &LifecycleError{Component: c.Name(), Phase: PhaseStartup}
			k.reject(err)
			for j := i - 1; j >= 0; j-- {
				k.components[j].ComponentShutdown()
			}
			return false
		}
	}

	for _, ext := range k.extensions {
		if !ext.Initialize() {
			for j := len(k.components) - 1; j >= 0; j-- {
				k.components[j].ComponentShutdown()
			}
			err := &LifecycleError{Component: ext.Name(), Phase: PhaseStartup}
			k.reject(err)
			return false
		}
	}

	k.running = true
	return true
}

// Step implements schedule.Runnable: pull on every component, then
// calculate, then push, then extensions.step(), all in load order
// (spec §4.E's four-phase pipeline). Step never returns an error;
// components must absorb transient faults internally.
func (k *Kernel) Step() {
	k.mu.Lock()
	components := k.components
	extensions := k.extensions
	k.mu.Unlock()

	ctx := context.Background()

	k.runPhase(components, "pull", func(c component.Component) { c.Pull(ctx) })
	k.runPhase(components, "calculate", func(c component.Component) { c.Calculate(ctx) })
	k.runPhase(components, "push", func(c component.Component) { c.Push(ctx) })

	for _, ext := range extensions {
		ext.Step()
	}
}

func (k *Kernel) runPhase(components []component.Component, phase string, fn func(component.Component)) {
	for _, c := range components {
		start := time.Now()
		fn(c)
		k.recordTiming(c.Name(), phase, time.Since(start), start)
	}
}

// Finalize implements schedule.Runnable: every extension's Finalize()
// runs first, in reverse registration order, while components are
// still loaded (this is how a property-persistence extension sees
// live component state to save); then componentShutdown() runs on
// every component, also in reverse order.
func (k *Kernel) Finalize() {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i := len(k.extensions) - 1; i >= 0; i-- {
		k.extensions[i].Finalize()
	}
	for i := len(k.components) - 1; i >= 0; i-- {
		k.components[i].ComponentShutdown()
	}
	k.running = false
}

// Config returns the kernel's configuration, so a host can share it
// with components/extensions constructed alongside the kernel (e.g.
// property/propext.New).
func (k *Kernel) Config() *config.KernelConfig {
	return k.cfg
}

// reject logs and, if an event.Service is wired, emits
// LifecycleRejected.
func (k *Kernel) reject(err *LifecycleError) {
	k.log.Error("kernel: lifecycle rejected", "component", err.Component, "phase", string(err.Phase), "cause", err.Cause)
	if k.events != nil {
		_ = k.events.Emit(LifecycleRejected, error(err))
	}
}

func (k *Kernel) recordTiming(name, phase string, d time.Duration, at time.Time) {
	k.reportMu.Lock()
	defer k.reportMu.Unlock()
	k.report = append(k.report, PhaseTiming{Component: name, Phase: phase, Duration: d, At: at})
	if len(k.report) > k.reportN {
		k.report = k.report[len(k.report)-k.reportN:]
	}
}

// Report returns a snapshot of the last N (componentName, phase,
// duration) timing samples, supplementing spec.md with the
// original_source reporting capability the distillation dropped (see
// SPEC_FULL.md Module E). Gated behind ReportingFacet at the component
// level is the caller's responsibility: Report() itself always
// returns whatever has been recorded, regardless of facet.
func (k *Kernel) Report() []PhaseTiming {
	k.reportMu.Lock()
	defer k.reportMu.Unlock()
	out := make([]PhaseTiming, len(k.report))
	copy(out, k.report)
	return out
}
