package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocked_PushFullReturnsFalse(t *testing.T) {
	t.Parallel()
	b := NewLocked[string](2)
	require.True(t, b.Push("a"))
	require.True(t, b.Push("b"))
	require.False(t, b.Push("c"))
	require.Equal(t, 2, b.Len())
}

func TestLocked_MultiWriterMultiReader(t *testing.T) {
	t.Parallel()
	b := NewLocked[int](16)
	const writers = 8
	const perWriter = 1000

	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				for !b.Push(i) {
					// spin until a reader drains
				}
			}
		}()
	}

	total := writers * perWriter
	var popped int
	done := make(chan struct{})
	go func() {
		var v int
		for popped < total {
			if b.Pop(&v) {
				popped++
			}
		}
		close(done)
	}()

	wg.Wait()
	<-done
	require.Equal(t, total, popped)
}

func TestLocked_Clear(t *testing.T) {
	t.Parallel()
	b := NewLocked[int](4)
	b.Push(1)
	b.Push(2)
	b.Clear()
	require.Equal(t, 0, b.Len())
}
