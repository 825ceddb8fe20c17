package asyncmain

import (
	"errors"
	"slices"
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"
)

var (
	// ErrExecutorClosed is the error of a Task that was spawned after, or
	// was still queued when, its executor closed.
	ErrExecutorClosed = errors.New("asyncmain: executor closed")

	// ErrTaskCanceled is the error of a Task canceled by [Task.Cancel].
	ErrTaskCanceled = errors.New("asyncmain: task canceled")

	// ErrTaskExited is the error of a Task that called runtime.Goexit,
	// for example through testing.T.FailNow.
	ErrTaskExited = errors.New("asyncmain: task exited")
)

// Spawner is the interface implemented by [Executor] and [LocalExecutor].
type Spawner interface {
	Spawn(f func() error) *Task
}

// scheduler is the run queue shared by both executor variants.
//
// Tasks are run in FIFO order by whichever goroutine drives the scheduler:
// a worker, a Wait call or a TryTick call.
type scheduler struct {
	mu      sync.Mutex
	cond    sync.Cond
	q       *queue.Queue
	closed  bool
	faulted []*Task // Tasks that panicked and have not been waited.
	log     *zap.Logger
}

// lazyInit must be called with s.mu held.
func (s *scheduler) lazyInit() {
	if s.q == nil {
		s.q = queue.New()
		s.cond.L = &s.mu
	}
}

func (s *scheduler) logger() *zap.Logger {
	if s.log != nil {
		return s.log
	}
	return Logger()
}

// Spawn creates a [Task] to run f and adds it in the run queue.
//
// The Task runs when some goroutine drives the executor, see [Task.Wait].
// If the executor has been closed, the returned Task is already completed
// with [ErrExecutorClosed].
//
// Spawn is safe for concurrent use.
func (s *scheduler) Spawn(f func() error) *Task {
	if f == nil {
		panic("asyncmain: Spawn called with nil func")
	}

	t := &Task{s: s, f: f, done: make(chan struct{})}

	s.mu.Lock()
	s.lazyInit()

	if s.closed {
		t.complete(ErrExecutorClosed)
		s.mu.Unlock()
		return t
	}

	s.q.Add(t)
	s.mu.Unlock()
	s.cond.Signal()

	return t
}

// Run spawns f and then waits for it, driving the executor on the calling
// goroutine in the meantime.
func (s *scheduler) Run(f func() error) error {
	return s.Spawn(f).Wait()
}

// TryTick runs one queued [Task] on the calling goroutine, if there is any.
// It reports whether a Task was run.
func (s *scheduler) TryTick() bool {
	s.mu.Lock()
	s.lazyInit()
	defer s.mu.Unlock()

	for s.q.Length() != 0 {
		t := s.q.Remove().(*Task)
		if t.state == taskQueued {
			s.runTask(t)
			return true
		}
	}

	return false
}

// drive runs queued tasks until stop reports true.
// s.mu must be held; stop is called with s.mu held.
func (s *scheduler) drive(stop func() bool) {
	for !stop() {
		if s.q.Length() == 0 {
			s.cond.Wait()
			continue
		}
		if t := s.q.Remove().(*Task); t.state == taskQueued {
			s.runTask(t)
		}
	}
	if s.q.Length() != 0 {
		// The signal that woke us up may have been meant for a task we are
		// leaving behind. Pass it on.
		s.cond.Signal()
	}
}

// runTask must be called with s.mu held. It returns with s.mu held, also
// when t calls runtime.Goexit, which then goes on unwinding the caller.
func (s *scheduler) runTask(t *Task) {
	t.state = taskRunning
	s.mu.Unlock()

	var err error

	ok, exited := false, true

	defer func() {
		s.mu.Lock()

		t.f = nil

		switch {
		case exited:
			err = ErrTaskExited
			s.logger().Warn("task called runtime.Goexit")
		case !ok:
			err = nil
			s.faulted = append(s.faulted, t)
		}

		t.complete(err)
	}()

	ok = t.ps.Try(func() { err = t.f() })
	exited = false
}

// stop closes s and reports whether this call did it.
func (s *scheduler) stop() bool {
	s.mu.Lock()
	s.lazyInit()

	if s.closed {
		s.mu.Unlock()
		return false
	}

	s.closed = true

	dropped := 0

	for s.q.Length() != 0 {
		if t := s.q.Remove().(*Task); t.state == taskQueued {
			t.complete(ErrExecutorClosed)
			dropped++
		}
	}

	s.cond.Broadcast()
	s.mu.Unlock()

	s.logger().Debug("executor closed", zap.Int("dropped", dropped))

	return true
}

// rethrow panics with every panic of tasks that nobody has waited for.
func (s *scheduler) rethrow() {
	s.mu.Lock()
	faulted := s.faulted
	s.faulted = nil
	s.mu.Unlock()

	var ps panicstack
	for _, t := range faulted {
		ps = append(ps, t.ps...)
	}

	if len(ps) != 0 {
		s.logger().Error("unwaited task panicked", zap.Int("panics", len(ps)))
	}

	ps.Repanic()
}

// observe must be called with s.mu held.
func (s *scheduler) observe(t *Task) {
	if i := slices.Index(s.faulted, t); i != -1 {
		s.faulted = slices.Delete(s.faulted, i, i+1)
	}
}

// Executor is a thread-safe executor.
//
// An Executor owns a pool of worker goroutines, each of which repeatedly
// takes a [Task] from a shared run queue and runs it, until the Executor is
// closed.
// A goroutine waiting for a Task also runs queued tasks in the meantime.
//
// An Executor must be created with [NewExecutor].
type Executor struct {
	scheduler
	workers workerPool
}

// NewExecutor creates an [Executor] and starts its worker goroutines.
//
// The number of workers defaults to [DefaultWorkers]; use [WithWorkers] to
// override it.
func NewExecutor(opts ...Option) *Executor {
	c := newConfig(opts)

	e := &Executor{}
	e.log = c.logger

	e.mu.Lock()
	e.lazyInit()
	e.mu.Unlock()

	n := c.poolSize()
	e.workers.start(&e.scheduler, n)
	e.logger().Debug("executor started", zap.Int("workers", n))

	return e
}

// NumWorkers returns the number of worker goroutines that are still running.
func (e *Executor) NumWorkers() int {
	return e.workers.size()
}

// Close closes e: still-queued tasks complete with [ErrExecutorClosed],
// workers finish the tasks they are running and exit, and Close waits for
// all of them.
//
// If a Task panicked and nobody has waited for it, Close panics with its
// panic value after that.
//
// Close is idempotent.
func (e *Executor) Close() {
	if e.stop() {
		e.workers.join()
	}
	e.rethrow()
}

// LocalExecutor is a single-threaded executor.
//
// A LocalExecutor never starts a goroutine. Spawned tasks only run on
// the goroutine that drives it with [Task.Wait], Run or TryTick.
// Spawn is safe for concurrent use, but the other methods are meant to be
// called from a single goroutine.
//
// The zero value for a LocalExecutor is ready to use.
type LocalExecutor struct {
	scheduler
}

// NewLocalExecutor creates a [LocalExecutor]. Only [WithLogger] has an
// effect on it.
func NewLocalExecutor(opts ...Option) *LocalExecutor {
	c := newConfig(opts)
	return &LocalExecutor{scheduler{log: c.logger}}
}

// Close closes e: still-queued tasks complete with [ErrExecutorClosed].
//
// If a Task panicked and nobody has waited for it, Close panics with its
// panic value.
//
// Close is idempotent.
func (e *LocalExecutor) Close() {
	e.stop()
	e.rethrow()
}
