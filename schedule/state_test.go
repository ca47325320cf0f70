package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskState_CompareAndSwap(t *testing.T) {
	t.Parallel()
	s := newTaskState()
	assert.Equal(t, Idle, s.Load())

	assert.True(t, s.CompareAndSwap(Idle, Running))
	assert.Equal(t, Running, s.Load())

	assert.False(t, s.CompareAndSwap(Idle, Error), "cas from wrong expected state must fail")
	assert.Equal(t, Running, s.Load())
}

func TestTaskState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Error", Error.String())
	assert.Equal(t, "Unknown", TaskState(99).String())
}
