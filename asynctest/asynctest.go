// Package asynctest runs test functions inside their own executor.
//
//	func TestSomething(t *testing.T) {
//		asynctest.Run(t, func(ex *asyncmain.Executor) error {
//			return ex.Run(func() error { ... })
//		})
//	}
//
// Every call creates a fresh executor and closes it before returning, so no
// task of one test is left running, or queued, during another test.
package asynctest

import (
	"testing"

	"github.com/b97tsk/asyncmain"
	"go.uber.org/zap/zaptest"
)

// Run calls f via [asyncmain.Run] and fails tb with the error f returns.
//
// Executor logs go to tb's log unless opts contains an
// [asyncmain.WithLogger].
//
// Panics propagate; the testing package reports them along with their stack
// traces.
//
// f and the tasks of an [asyncmain.LocalExecutor] run on the test goroutine,
// so they may call tb.FailNow (or Fatal, Skip, etc.): the executor is closed,
// the task completes with [asyncmain.ErrTaskExited] and only the current test
// stops. Tasks spawned on an [asyncmain.Executor] may run on other
// goroutines, so they must not.
func Run[F asyncmain.Entry](tb testing.TB, f F, opts ...asyncmain.Option) {
	tb.Helper()

	opts = append([]asyncmain.Option{asyncmain.WithLogger(zaptest.NewLogger(tb))}, opts...)

	if err := asyncmain.Run(f, opts...); err != nil {
		tb.Fatalf("%v", err)
	}
}

// Func returns a test function that calls [Run] with f and opts, for use
// with testing.T.Run.
func Func[F asyncmain.Entry](f F, opts ...asyncmain.Option) func(t *testing.T) {
	return func(t *testing.T) {
		t.Helper()
		Run(t, f, opts...)
	}
}
