package asynctest_test

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/b97tsk/asyncmain"
	"github.com/b97tsk/asyncmain/asynctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapes(t *testing.T) {
	t.Run("Plain", asynctest.Func(func() {}))
	t.Run("PlainError", asynctest.Func(func() error { return nil }))
	t.Run("Executor", func(t *testing.T) {
		asynctest.Run(t, func(ex *asyncmain.Executor) {
			assert.NoError(t, ex.Run(func() error { return nil }))
		})
	})
	t.Run("ExecutorError", asynctest.Func(func(ex *asyncmain.Executor) error {
		// A task on a worker and the test goroutine meet halfway.
		ready := make(chan struct{})
		ex.Spawn(func() error {
			close(ready)
			return nil
		})
		select {
		case <-ready:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("timed out")
		}
	}, asyncmain.WithWorkers(2)))
	t.Run("Local", func(t *testing.T) {
		asynctest.Run(t, func(ex *asyncmain.LocalExecutor) {
			assert.NoError(t, ex.Run(func() error { return nil }))
		})
	})
	t.Run("LocalError", asynctest.Func(func(ex *asyncmain.LocalExecutor) error {
		return ex.Run(func() error { return nil })
	}))
}

// recorder is a testing.TB that records failures instead of failing the
// test it wraps. Like testing.T, its FailNow stops the calling goroutine.
type recorder struct {
	testing.TB
	failed bool
	msg    string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...any) {
	r.failed = true
	r.msg = fmt.Sprintf(format, args...)
}

func (r *recorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}

func TestRunReportsFailure(t *testing.T) {
	r := &recorder{TB: t}

	asynctest.Run(r, func(ex *asyncmain.Executor) error {
		return ex.Run(func() error { return errors.New("task failed") })
	}, asyncmain.WithWorkers(1))

	assert.True(t, r.failed)
	assert.Equal(t, "task failed", r.msg)
}

func TestRunSuccess(t *testing.T) {
	r := &recorder{TB: t}

	asynctest.Run(r, func(*asyncmain.LocalExecutor) error { return nil })

	assert.False(t, r.failed)
}

func TestFailNowInTask(t *testing.T) {
	r := &recorder{TB: t}

	var task *asyncmain.Task

	returned := false
	done := make(chan struct{})

	// Stands in for a test goroutine: FailNow ends it, not this test.
	go func() {
		defer close(done)
		asynctest.Run(r, func(ex *asyncmain.LocalExecutor) error {
			task = ex.Spawn(func() error {
				r.FailNow()
				return nil
			})
			return task.Wait()
		})
		returned = true
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}

	assert.True(t, r.failed)
	assert.False(t, returned)
	require.NotNil(t, task)
	assert.ErrorIs(t, task.Wait(), asyncmain.ErrTaskExited)
}

// A test that stopped inside a task does not affect the tests after it.
func TestFailNowThenNextTest(t *testing.T) {
	r := &recorder{TB: t}

	done := make(chan struct{})

	go func() {
		defer close(done)
		asynctest.Run(r, func(ex *asyncmain.LocalExecutor) error {
			return ex.Run(func() error {
				r.FailNow()
				return nil
			})
		})
	}()

	<-done

	require.True(t, r.failed)

	t.Run("Next", asynctest.Func(func(ex *asyncmain.LocalExecutor) error {
		return ex.Run(func() error { return nil })
	}))
}

func TestRunPanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		asynctest.Run(t, func(*asyncmain.Executor) { panic("boom") }, asyncmain.WithWorkers(1))
	})
}

// Tasks that a test leaves behind must not run during the next test.
func TestIsolation(t *testing.T) {
	t.Run("ThreadSafe", func(t *testing.T) {
		var leaked atomic.Int32

		t.Run("A", asynctest.Func(func(ex *asyncmain.Executor) {
			// The only worker is busy, so the next tasks stay queued until
			// the executor closes and drops them.
			ex.Spawn(func() error {
				time.Sleep(50 * time.Millisecond)
				return nil
			})
			for range 10 {
				ex.Spawn(func() error {
					leaked.Add(1)
					return nil
				})
			}
		}, asyncmain.WithWorkers(1)))

		t.Run("B", asynctest.Func(func(ex *asyncmain.Executor) {
			require.NoError(t, ex.Run(func() error { return nil }))
			time.Sleep(100 * time.Millisecond)
			assert.Zero(t, leaked.Load())
		}))
	})
	t.Run("SingleThreaded", func(t *testing.T) {
		var leaked atomic.Int32

		t.Run("A", asynctest.Func(func(ex *asyncmain.LocalExecutor) {
			ex.Spawn(func() error {
				leaked.Add(1)
				return nil
			})
		}))

		t.Run("B", asynctest.Func(func(ex *asyncmain.LocalExecutor) {
			require.NoError(t, ex.Run(func() error { return nil }))
			assert.Zero(t, leaked.Load())
		}))
	})
	t.Run("FreshExecutor", func(t *testing.T) {
		var first *asyncmain.Executor

		t.Run("A", asynctest.Func(func(ex *asyncmain.Executor) { first = ex }))
		t.Run("B", asynctest.Func(func(ex *asyncmain.Executor) {
			assert.NotSame(t, first, ex)
			assert.Zero(t, first.NumWorkers())
		}))
	})
}
