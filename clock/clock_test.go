package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicks_Monotonic(t *testing.T) {
	t.Parallel()
	var prev Ticks
	for i := 0; i < 1000; i++ {
		cur := Now()
		assert.GreaterOrEqual(t, int64(cur), int64(prev))
		prev = cur
	}
}

func TestTicks_SecondsSince(t *testing.T) {
	t.Parallel()
	t0 := Ticks(0)
	t1 := Ticks(time.Second)
	assert.InDelta(t, 1.0, t1.SecondsSince(t0), 1e-9)
}

func TestSecsToNsecs(t *testing.T) {
	t.Parallel()
	require.Equal(t, int64(10_000_000), SecsToNsecs(0.01))
	require.Equal(t, int64(1_000_000_000), SecsToNsecs(1.0))
	require.Equal(t, int64(0), SecsToNsecs(0))
}

func TestFake_Advance(t *testing.T) {
	t.Parallel()
	f := NewFake(100)
	require.Equal(t, Ticks(100), f.Now())
	got := f.Advance(50 * time.Nanosecond)
	require.Equal(t, Ticks(150), got)
	require.Equal(t, Ticks(150), f.Now())

	assert.Panics(t, func() {
		f.Advance(-1)
	})
}
