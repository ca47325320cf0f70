package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type largeValue struct {
	A, B, C, D, E, F, G, H int64
}

func TestDataCell_LastWriterWins(t *testing.T) {
	t.Parallel()
	c := NewDataCell[int]()
	c.Set(1)
	c.Set(2)
	c.Set(3)
	require.Equal(t, 3, c.Load())
}

// TestDataCell_ConcurrentGetNeverTorn races one writer against many
// readers of a multi-field struct (larger than pointer width) and
// asserts every read observes a value where all fields are equal to
// each other, i.e. never a torn write.
func TestDataCell_ConcurrentGetNeverTorn(t *testing.T) {
	c := NewDataCell[largeValue]()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		var n int64
		for {
			select {
			case <-stop:
				return
			default:
			}
			n++
			c.Set(largeValue{n, n, n, n, n, n, n, n})
		}
	}()

	const readers = 4
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			var v largeValue
			for j := 0; j < 20000; j++ {
				c.Get(&v)
				if v.A != v.B || v.B != v.C || v.C != v.D || v.D != v.E || v.E != v.F || v.F != v.G || v.G != v.H {
					t.Errorf("torn read observed: %+v", v)
					return
				}
			}
		}()
	}

	close(stop)
	wg.Wait()
}
