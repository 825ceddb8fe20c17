package asyncmain

import (
	"os"
	"strconv"

	"github.com/b97tsk/asyncmain/internal/cpus"
	"go.uber.org/zap"
)

// WorkersEnv is the environment variable that, when set to a positive
// integer, overrides the default number of workers of an [Executor].
const WorkersEnv = "ASYNCMAIN_WORKERS"

// An Option configures an executor created by [NewExecutor],
// [NewLocalExecutor], [Run] or [Main].
type Option func(*config)

type config struct {
	workers int
	logger  *zap.Logger
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *config) poolSize() int {
	if c.workers > 0 {
		return c.workers
	}
	return DefaultWorkers()
}

// WithWorkers sets the number of worker goroutines of an [Executor].
// A value less than or equal to zero selects [DefaultWorkers].
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger sets the logger of an executor. By default, executors log to
// [Logger].
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// DefaultWorkers returns the number of workers an [Executor] starts when
// [WithWorkers] is not given: the value of [WorkersEnv] if it is
// a positive integer, or else the number of logical processors available to
// the process.
func DefaultWorkers() int {
	if v, ok := os.LookupEnv(WorkersEnv); ok {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
		Logger().Warn("ignoring malformed "+WorkersEnv, zap.String("value", v))
	}
	return cpus.Available()
}
