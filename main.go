package asyncmain

// Entry is the set of function shapes that [Run], [Main] and
// asynctest.Run accept.
//
// The shape decides which executor, if any, is created for the function:
//   - func() and func() error: no executor;
//   - func(*Executor) and func(*Executor) error: an [Executor] with a pool
//     of worker goroutines;
//   - func(*LocalExecutor) and func(*LocalExecutor) error:
//     a [LocalExecutor], no extra goroutines.
//
// A function of any other shape does not compile.
type Entry interface {
	func() | func() error |
		func(*Executor) | func(*Executor) error |
		func(*LocalExecutor) | func(*LocalExecutor) error
}

// Variant is the kind of executor an [Entry] asks for.
type Variant int

const (
	NoExecutor     Variant = iota // no executor is created
	SingleThreaded                // a LocalExecutor is created
	ThreadSafe                    // an Executor is created
)

func (v Variant) String() string {
	switch v {
	case NoExecutor:
		return "none"
	case SingleThreaded:
		return "single-threaded"
	case ThreadSafe:
		return "thread-safe"
	}
	return "Variant(invalid)"
}

// VariantOf returns the [Variant] that the function shape F asks for.
func VariantOf[F Entry]() Variant {
	var f F
	switch any(f).(type) {
	case func(*Executor), func(*Executor) error:
		return ThreadSafe
	case func(*LocalExecutor), func(*LocalExecutor) error:
		return SingleThreaded
	}
	return NoExecutor
}

// Run creates the executor that f asks for (see [Entry]), calls f with it on
// the calling goroutine, then closes the executor and returns what f
// returned.
//
// The executor is closed on every path out of f, panics included. For
// an [Executor], that means its workers are stopped and joined before Run
// returns or the panic continues.
//
// Panics are never recovered. A panic in f, or in a spawned task that is
// waited for, or in one that nobody waited for, propagates out of Run.
func Run[F Entry](f F, opts ...Option) error {
	switch f := any(f).(type) {
	case func():
		f()
		return nil
	case func() error:
		return f()
	case func(*Executor):
		return withExecutor(opts, func(e *Executor) error { f(e); return nil })
	case func(*Executor) error:
		return withExecutor(opts, f)
	case func(*LocalExecutor):
		return withLocalExecutor(opts, func(e *LocalExecutor) error { f(e); return nil })
	case func(*LocalExecutor) error:
		return withLocalExecutor(opts, f)
	}
	panic("unreachable")
}

func withExecutor(opts []Option, f func(e *Executor) error) error {
	e := NewExecutor(opts...)
	defer e.Close()
	return f(e)
}

func withLocalExecutor(opts []Option, f func(e *LocalExecutor) error) error {
	e := NewLocalExecutor(opts...)
	defer e.Close()
	return f(e)
}

// Main is the body of a program's main function.
//
// Main calls [Run] with f and opts, and passes the result to [Exit]:
// if f reports an error, Main writes it to standard error and exits
// the process with a non-zero status; otherwise Main returns.
//
//	func main() {
//		asyncmain.Main(func(ex *asyncmain.Executor) error {
//			t := ex.Spawn(work)
//			return t.Wait()
//		})
//	}
func Main[F Entry](f F, opts ...Option) {
	Exit(Run(f, opts...))
}
