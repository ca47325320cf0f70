package kernel

import (
	"errors"
	"fmt"
)

// Sentinel and structured errors per spec §7 / SPEC_FULL.md's ambient
// error-handling section, following eventloop's
// ErrLoopAlreadyRunning-style package-prefixed sentinel convention.
var (
	// ErrKernelBusy is returned by AddComponent/RemoveComponent while
	// the kernel is running.
	ErrKernelBusy = errors.New("kernel: busy: kernel is running")

	// ErrFacetBindFailed is wrapped into LifecycleError when an
	// extension's BindFacet call fails during component load.
	ErrFacetBindFailed = errors.New("kernel: facet bind failed")
)

// Phase identifies which lifecycle hook or pipeline phase a
// LifecycleError occurred in.
type Phase string

const (
	PhaseLoad      Phase = "load"
	PhaseStartup   Phase = "startup"
	PhaseShutdown  Phase = "shutdown"
	PhaseUnload    Phase = "unload"
	PhaseFacetBind Phase = "facet_bind"
)

// LifecycleError carries the component name and phase a lifecycle
// hook failed in, per SPEC_FULL.md's ambient-stack error design, so
// callers can errors.As to recover which component/phase failed - the
// event service's pre-declared LifecycleRejected event carries the
// same information for host-level diagnostics.
type LifecycleError struct {
	Component string
	Phase     Phase
	Cause     error
}

func (e *LifecycleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("kernel: component %q rejected at %s: %v", e.Component, e.Phase, e.Cause)
	}
	return fmt.Sprintf("kernel: component %q rejected at %s", e.Component, e.Phase)
}

func (e *LifecycleError) Unwrap() error { return e.Cause }
