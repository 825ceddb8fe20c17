package asyncmain

type taskState uint8

const (
	taskQueued taskState = iota
	taskRunning
	taskDone
)

// A Task is a function spawned onto an [Executor] or a [LocalExecutor].
//
// A Task runs at most once, on whichever goroutine drives its executor when
// the Task reaches the front of the run queue.
type Task struct {
	s     *scheduler
	f     func() error
	state taskState // guarded by s.mu
	err   error
	ps    panicstack
	done  chan struct{}
}

// complete must be called with t.s.mu held.
func (t *Task) complete(err error) {
	t.err = err
	t.state = taskDone
	close(t.done)
	t.s.cond.Broadcast()
}

// Wait blocks until t completes and returns the error t returned.
// While blocking, Wait runs other queued tasks of the same executor on
// the calling goroutine.
//
// If t panicked, Wait panics with a value that carries the original panic
// value and stack trace. Every Wait on such t panics.
//
// If a Task run by Wait calls runtime.Goexit, the calling goroutine exits
// too, and that Task completes with [ErrTaskExited].
//
// Wait is safe for concurrent use.
func (t *Task) Wait() error {
	ps, err := t.wait()
	ps.Repanic()
	return err
}

func (t *Task) wait() (panicstack, error) {
	s := t.s

	s.mu.Lock()
	defer s.mu.Unlock()

	s.drive(func() bool { return t.state == taskDone })
	s.observe(t)

	return t.ps, t.err
}

// Cancel completes t with [ErrTaskCanceled] if t has not yet started.
// It reports whether t was canceled.
func (t *Task) Cancel() bool {
	s := t.s

	s.mu.Lock()
	defer s.mu.Unlock()

	if t.state != taskQueued {
		return false
	}

	t.f = nil
	t.complete(ErrTaskCanceled)

	return true
}

// Done returns a channel that is closed when t completes.
//
// Receiving from Done does not drive the executor. With a [LocalExecutor],
// some goroutine must still call Wait, Run or TryTick for t to run.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
