// Package asyncmain sets up executors for a program's main function and for
// tests, so that one does not have to write executor bootstrap code by hand.
//
// # Executors
//
// An executor owns a run queue of spawned [Task] values.
// There are two kinds of executors:
//   - [Executor] is thread-safe. It owns a pool of worker goroutines, one per
//     available logical processor by default, which take tasks from the run
//     queue and run them until the Executor is closed.
//   - [LocalExecutor] is single-threaded. It never starts a goroutine.
//     Its tasks only run on the goroutine that drives it.
//
// Waiting for a Task drives its executor: while blocking in [Task.Wait],
// the calling goroutine runs other queued tasks of the same executor.
// This is how a LocalExecutor makes progress at all, and how an Executor
// avoids running out of workers when tasks wait for other tasks.
//
// # Main
//
// [Main] picks an executor from the shape of the function it is given,
// creates it, calls the function, and tears the executor down:
//
//	func main() {
//		asyncmain.Main(func(ex *asyncmain.Executor) error {
//			var tasks []*asyncmain.Task
//			for i := range 16 {
//				tasks = append(tasks, ex.Spawn(func() error {
//					fmt.Println("Task number", i)
//					return nil
//				}))
//			}
//			for _, t := range tasks {
//				if err := t.Wait(); err != nil {
//					return err
//				}
//			}
//			return nil
//		})
//	}
//
// A function taking no argument gets no executor; one taking
// a *LocalExecutor gets a LocalExecutor. The accepted shapes are listed by
// [Entry]; any other shape is a compile error, not a runtime one.
//
// If the function returns an error, Main prints it to standard error and
// exits the process with a non-zero status (see [Exit] and [ExitCoder]).
//
// # Tests
//
// Package asynctest does the same for test functions, giving each test its
// own executor.
//
// # Panic Propagation
//
// Panics are never recovered for good. A panic in a spawned Task is
// recovered on the goroutine that runs it, along with its stack trace, and
// raised again on every goroutine that waits for the Task.
// If nobody waits for a panicked Task, closing its executor raises the panic.
// A panic in the function given to Main propagates after the executor has
// been torn down.
//
// A Task that calls runtime.Goexit, as testing.T.FailNow does, completes
// with [ErrTaskExited], and the goroutine that ran it exits.
package asyncmain
