package buffer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPolicyBuffer_NonBlocking(t *testing.T) {
	t.Parallel()
	pb := NewPolicyBuffer[int](NewLockFree[int](4), NonBlockingPolicy{})
	require.True(t, pb.PushBlocking(1))

	ctx := context.Background()
	var v int
	ok, err := pb.PopBlocking(ctx, &v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestPolicyBuffer_BlockingWakesOnPush(t *testing.T) {
	t.Parallel()
	buf := NewLockFree[int](4)
	pb := NewPolicyBuffer[int](buf, NewBlockingPolicy(4))

	done := make(chan int, 1)
	go func() {
		var v int
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		ok, err := pb.PopBlocking(ctx, &v)
		if err != nil || !ok {
			done <- -1
			return
		}
		done <- v
	}()

	time.Sleep(20 * time.Millisecond) // let the popper block first
	require.True(t, pb.PushBlocking(42))

	select {
	case v := <-done:
		require.Equal(t, 42, v)
	case <-time.After(2 * time.Second):
		t.Fatal("PopBlocking never woke up")
	}
}

func TestPolicyBuffer_BlockingTimesOut(t *testing.T) {
	t.Parallel()
	pb := NewPolicyBuffer[int](NewLockFree[int](2), NewBlockingPolicy(2))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	var v int
	ok, err := pb.PopBlocking(ctx, &v)
	require.Error(t, err)
	require.False(t, ok)
}
