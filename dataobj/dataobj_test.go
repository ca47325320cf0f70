package dataobj

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()
	b := NewBag(RoleInput)
	_, err := Register[float64](b, "pos", 0)
	require.NoError(t, err)

	_, err = Register[float64](b, "pos", 1)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestBindNotFound(t *testing.T) {
	t.Parallel()
	b := NewBag(RoleInput)
	_, err := Bind[float64](b, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestBindTypeMismatch is spec §8 scenario 3: a component requests
// Input.Get<f64>("pos") but "pos" was registered as []float64.
func TestBindTypeMismatch(t *testing.T) {
	t.Parallel()
	b := NewBag(RoleInput)
	_, err := Register[[]float64](b, "pos", []float64{0, 0, 0})
	require.NoError(t, err)

	_, err = Bind[float64](b, "pos")
	require.True(t, errors.Is(err, ErrTypeMismatch), "got: %v", err)
}

func TestGetSetRoundTrip(t *testing.T) {
	t.Parallel()
	b := NewBag(RoleSetPoint)
	h, err := Register[float64](b, "v", 0)
	require.NoError(t, err)

	h.Set(1.0)
	require.Equal(t, 1.0, h.Get())

	// Bind again from a fresh handle and confirm it observes the same
	// cell (shared storage, not a copy at bind time).
	h2, err := Bind[float64](b, "v")
	require.NoError(t, err)
	require.Equal(t, 1.0, h2.Get())
	h2.Set(2.0)
	require.Equal(t, 2.0, h.Get())
}

func TestRegistryBagsDistinctRoles(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	require.Equal(t, RoleInput, r.Input.Role())
	require.Equal(t, RoleModel, r.Model.Role())
	require.Equal(t, RoleSetPoint, r.SetPoint.Role())
	require.Equal(t, RoleOutput, r.Output.Role())
}
