package schedule

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRunner is a Runnable that counts invocations and can
// optionally sleep inside Step to simulate a slow step, or fail
// Initialize.
type countingRunner struct {
	initOK     bool
	steps      atomic.Int64
	finalizes  atomic.Int64
	stepSleep  time.Duration
	stepExtras func()
}

func (r *countingRunner) Initialize() bool { return r.initOK }
func (r *countingRunner) Step() {
	if r.stepSleep > 0 {
		time.Sleep(r.stepSleep)
	}
	if r.stepExtras != nil {
		r.stepExtras()
	}
	r.steps.Add(1)
}
func (r *countingRunner) Finalize() { r.finalizes.Add(1) }

func TestTask_StartFailsInitialize(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: false}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("bad", 10*time.Millisecond, Hard, r)
	tt.Add(task)

	ok := task.Start()
	assert.False(t, ok)
	assert.Equal(t, Error, task.State())
}

func TestTask_StartTwiceIsNoop(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: true}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("once", 10*time.Millisecond, Hard, r)
	tt.Add(task)

	require.True(t, task.Start())
	assert.False(t, task.Start())
	assert.Equal(t, Running, task.State())
	require.True(t, task.Stop())
}

// TestTask_SlipDetection is spec §8 scenario 2: a task with period 10ms
// whose step sleeps 25ms once. After enough ticks, missed_steps must be
// exactly 1 and Step must still have been called only once for that
// slipped interval (no catch-up).
func TestTask_SlipDetection(t *testing.T) {
	t.Parallel()
	var slowOnce sync.Once
	r := &countingRunner{initOK: true}
	r.stepExtras = func() {
		slowOnce.Do(func() {
			time.Sleep(25 * time.Millisecond)
		})
	}

	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("slippy", 10*time.Millisecond, Hard, r)
	tt.Add(task)
	require.True(t, task.Start())

	go tt.Run()
	defer tt.Shutdown()

	time.Sleep(150 * time.Millisecond)
	require.True(t, task.Stop())

	assert.Equal(t, uint64(1), task.Stats().MissedSteps)
	assert.Equal(t, int64(1), r.finalizes.Load())
}

// TestTask_StopIdempotentConcurrent is spec §8 scenario 4: two callers
// invoke Stop concurrently; both return, Finalize runs exactly once,
// and neither caller returns before Finalize has completed.
func TestTask_StopIdempotentConcurrent(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: true}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("dual-stop", 5*time.Millisecond, Hard, r)
	tt.Add(task)
	require.True(t, task.Start())
	go tt.Run()
	defer tt.Shutdown()

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = task.Stop()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), r.finalizes.Load())
	assert.True(t, results[0] != results[1], "exactly one Stop call should report true")
	assert.Equal(t, Idle, task.State())
}

func TestTask_StopWaitsForInFlightStep(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: true, stepSleep: 50 * time.Millisecond}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("slow-step", 5*time.Millisecond, Hard, r)
	tt.Add(task)
	require.True(t, task.Start())
	go tt.Run()
	defer tt.Shutdown()

	// Let a step begin.
	time.Sleep(10 * time.Millisecond)

	start := time.Now()
	require.True(t, task.Stop())
	elapsed := time.Since(start)

	assert.Equal(t, int64(1), r.finalizes.Load())
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond, "Stop must wait for the in-flight step")
}

func TestTask_RunFailsWhileRunning(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: true}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("swap", 10*time.Millisecond, Hard, r)
	tt.Add(task)
	require.True(t, task.Start())
	defer task.Stop()

	err := task.Run(&countingRunner{initOK: true})
	assert.ErrorIs(t, err, ErrTaskBusy)
}

func TestTask_RunSwapsWhileIdle(t *testing.T) {
	t.Parallel()
	r1 := &countingRunner{initOK: true}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("swap-idle", 10*time.Millisecond, Hard, r1)
	tt.Add(task)

	r2 := &countingRunner{initOK: true}
	require.NoError(t, task.Run(r2))
	require.True(t, task.Start())
	defer task.Stop()
	time.Sleep(5 * time.Millisecond)
}

func TestTask_ResetAfterError(t *testing.T) {
	t.Parallel()
	r := &countingRunner{initOK: false}
	tt := NewTaskTimer(time.Millisecond)
	task := NewTask("reset", 10*time.Millisecond, Hard, r)
	tt.Add(task)

	require.False(t, task.Start())
	require.Equal(t, Error, task.State())

	require.NoError(t, task.Run(&countingRunner{initOK: true}))
	require.NoError(t, task.Reset())
	require.True(t, task.Start())
	defer task.Stop()
}
