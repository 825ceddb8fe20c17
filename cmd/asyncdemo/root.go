package main

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/b97tsk/asyncmain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	executor string
	workers  int
	tasks    int
	delay    time.Duration
	fail     string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "asyncdemo",
		Short: "Spawn tasks on an executor and wait for them",
		Long: `asyncdemo spawns a number of tasks, each printing its number, on the
chosen executor, waits a while, then waits for every task.

With --fail, the run reports an error, which makes the process print it and
exit with a non-zero status.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), o)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.executor, "executor", "thread", "executor to use: none, local or thread")
	flags.IntVar(&o.workers, "workers", 0, "number of worker goroutines (thread executor only, 0 for default)")
	flags.IntVar(&o.tasks, "tasks", 16, "number of tasks to spawn")
	flags.DurationVar(&o.delay, "delay", 0, "how long to wait before waiting for tasks")
	flags.StringVar(&o.fail, "fail", "", "fail the run with this message")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log executor events")

	return cmd
}

func run(w io.Writer, o options) error {
	if o.tasks < 0 {
		return fmt.Errorf("invalid number of tasks: %d", o.tasks)
	}

	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck
		asyncmain.SetLogger(l)
		defer asyncmain.SetLogger(nil)
	}

	var mu sync.Mutex // Tasks on a thread-safe executor print concurrently.

	task := func(i int) func() error {
		return func() error {
			mu.Lock()
			defer mu.Unlock()
			_, err := fmt.Fprintln(w, "Task number", i)
			return err
		}
	}

	finish := func() error {
		if o.fail != "" {
			return errors.New(o.fail)
		}
		return nil
	}

	switch o.executor {
	case "none":
		return asyncmain.Run(func() error {
			for i := range o.tasks {
				if err := task(i)(); err != nil {
					return err
				}
			}
			time.Sleep(o.delay)
			return finish()
		})
	case "local":
		return asyncmain.Run(func(ex *asyncmain.LocalExecutor) error {
			if err := spawnAndWait(ex, o.tasks, o.delay, task); err != nil {
				return err
			}
			return finish()
		})
	case "thread":
		return asyncmain.Run(func(ex *asyncmain.Executor) error {
			if err := spawnAndWait(ex, o.tasks, o.delay, task); err != nil {
				return err
			}
			return finish()
		}, asyncmain.WithWorkers(o.workers))
	}

	return fmt.Errorf("unknown executor %q", o.executor)
}

func spawnAndWait(ex asyncmain.Spawner, n int, delay time.Duration, task func(i int) func() error) error {
	tasks := make([]*asyncmain.Task, 0, n)
	for i := range n {
		tasks = append(tasks, ex.Spawn(task(i)))
	}

	time.Sleep(delay)

	var errs []error
	for _, t := range tasks {
		errs = append(errs, t.Wait())
	}

	return errors.Join(errs...)
}
