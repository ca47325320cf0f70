// Package propext implements the property-persistence extension: the
// concrete component.Extension that turns spec §6's
// configure_on_load/save_props/save_file_prefix/save_file_extension/
// ignore_missing_files config options into live kernel behavior,
// using property/xmlprop as the wire format.
package propext

import (
	"fmt"
	"sync"

	"github.com/roman-aguilera/rtkernel/component"
	"github.com/roman-aguilera/rtkernel/internal/rtlog"
	"github.com/roman-aguilera/rtkernel/property/config"
	"github.com/roman-aguilera/rtkernel/property/xmlprop"
)

// Extension loads a component's saved property bag at bind time (if
// cfg.ConfigureOnLoad) and saves every bound component's current bag
// at Finalize time (if cfg.SaveProps). Components without
// component.PropertyFacet are simply skipped, not rejected.
type Extension struct {
	cfg *config.KernelConfig
	log rtlog.Logger

	mu    sync.Mutex
	bound map[component.Component]component.PropertyFacet
}

// New creates an Extension driven by cfg. log may be nil.
func New(cfg *config.KernelConfig, log rtlog.Logger) *Extension {
	if cfg == nil {
		cfg = &config.KernelConfig{}
	}
	if log == nil {
		log = rtlog.Nop()
	}
	return &Extension{
		cfg:   cfg,
		log:   log,
		bound: make(map[component.Component]component.PropertyFacet),
	}
}

func (e *Extension) Name() string { return "property-persistence" }

func (e *Extension) Initialize() bool { return true }

func (e *Extension) Step() {}

// Finalize marshals every bound component's current property bag to
// disk, if cfg.SaveProps is set. Runs before component shutdown (the
// Kernel calls extension Finalize in reverse registration order ahead
// of component shutdown), so the saved bag reflects live state.
func (e *Extension) Finalize() {
	if !e.cfg.SaveProps {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for c, pf := range e.bound {
		path := e.pathFor(c.Name())
		if err := xmlprop.SaveFile(path, pf.Properties()); err != nil {
			e.log.Error("propext: save properties", "component", c.Name(), "path", path, "error", err)
		}
	}
}

// BindFacet loads c's saved property file (if cfg.ConfigureOnLoad)
// and applies it via UpdateProperties, then tracks c for Finalize-time
// saving. Components without PropertyFacet are skipped (bound=false,
// err=nil), not rejected.
func (e *Extension) BindFacet(c component.Component) (bool, error) {
	pf, ok := c.(component.PropertyFacet)
	if !ok {
		return false, nil
	}

	if e.cfg.ConfigureOnLoad {
		path := e.pathFor(c.Name())
		saved, err := xmlprop.LoadFile(path, e.cfg.IgnoreMissingFiles)
		if err != nil {
			return false, fmt.Errorf("propext: load %s: %w", c.Name(), err)
		}
		if saved != nil && len(saved.Entries()) > 0 {
			if !pf.UpdateProperties(saved) {
				e.log.Warn("propext: saved properties incompatible", "component", c.Name(), "path", path)
			}
		}
	}

	e.mu.Lock()
	e.bound[c] = pf
	e.mu.Unlock()
	return true, nil
}

// UnbindFacet stops tracking c; it will no longer be saved at
// Finalize.
func (e *Extension) UnbindFacet(c component.Component) {
	e.mu.Lock()
	delete(e.bound, c)
	e.mu.Unlock()
}

func (e *Extension) pathFor(name string) string {
	return e.cfg.SaveFilePrefix + name + e.cfg.SaveFileExtension
}

var _ component.Extension = (*Extension)(nil)
