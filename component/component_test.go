package component_test

import (
	"context"
	"testing"

	"github.com/roman-aguilera/rtkernel/component"
	"github.com/roman-aguilera/rtkernel/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeComponent is a minimal Component, always implementing
// PropertyFacet (see bareComponent below for one that doesn't).
type fakeComponent struct {
	name string
	bag  *property.Bag
}

func (c *fakeComponent) Name() string                  { return c.name }
func (c *fakeComponent) ComponentLoaded() bool         { return true }
func (c *fakeComponent) ComponentStartup() bool        { return true }
func (c *fakeComponent) ComponentShutdown()            {}
func (c *fakeComponent) ComponentUnloaded()            {}
func (c *fakeComponent) Pull(ctx context.Context)      {}
func (c *fakeComponent) Calculate(ctx context.Context) {}
func (c *fakeComponent) Push(ctx context.Context)      {}

func (c *fakeComponent) Properties() *property.Bag {
	if c.bag == nil {
		c.bag = property.NewBag(c.name, "")
	}
	return c.bag
}

func (c *fakeComponent) UpdateProperties(b *property.Bag) bool {
	c.bag = b
	return true
}

var _ component.Component = (*fakeComponent)(nil)
var _ component.PropertyFacet = (*fakeComponent)(nil)

// propertyOnlyExtension binds only components implementing
// PropertyFacet, tracking bound/unbound calls.
type propertyOnlyExtension struct {
	bound map[component.Component]bool
}

func newPropertyOnlyExtension() *propertyOnlyExtension {
	return &propertyOnlyExtension{bound: make(map[component.Component]bool)}
}

func (e *propertyOnlyExtension) Name() string     { return "property-only" }
func (e *propertyOnlyExtension) Initialize() bool { return true }
func (e *propertyOnlyExtension) Step()            {}
func (e *propertyOnlyExtension) Finalize()        {}

func (e *propertyOnlyExtension) BindFacet(c component.Component) (bool, error) {
	if _, ok := c.(component.PropertyFacet); !ok {
		return false, nil
	}
	e.bound[c] = true
	return true, nil
}

func (e *propertyOnlyExtension) UnbindFacet(c component.Component) {
	delete(e.bound, c)
}

func TestExtension_BindFacetSkipsUnsupportedComponent(t *testing.T) {
	t.Parallel()
	ext := newPropertyOnlyExtension()

	withProps := &fakeComponent{name: "has-props"}
	bound, err := ext.BindFacet(withProps)
	require.NoError(t, err)
	assert.True(t, bound)

	var bare component.Component = bareComponent{}
	bound, err = ext.BindFacet(bare)
	require.NoError(t, err)
	assert.False(t, bound)
}

// bareComponent implements only Component, no facets.
type bareComponent struct{}

func (bareComponent) Name() string                  { return "bare" }
func (bareComponent) ComponentLoaded() bool         { return true }
func (bareComponent) ComponentStartup() bool        { return true }
func (bareComponent) ComponentShutdown()            {}
func (bareComponent) ComponentUnloaded()            {}
func (bareComponent) Pull(ctx context.Context)      {}
func (bareComponent) Calculate(ctx context.Context) {}
func (bareComponent) Push(ctx context.Context)      {}

var _ component.Component = bareComponent{}
