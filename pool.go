package asyncmain

import (
	"context"
	"runtime/pprof"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// workerPool is the set of goroutines that drive an Executor.
type workerPool struct {
	wg sync.WaitGroup
	n  atomic.Int32
}

func (p *workerPool) start(s *scheduler, n int) {
	for i := range n {
		p.n.Add(1)
		p.wg.Go(func() {
			defer p.n.Add(-1)

			exited := true
			defer func() {
				if exited {
					s.logger().Warn("worker exited", zap.Int("worker", i))
				}
			}()

			labels := pprof.Labels("asyncmain.worker", strconv.Itoa(i))
			pprof.Do(context.Background(), labels, func(context.Context) {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.drive(func() bool { return s.closed })
			})

			exited = false

			s.logger().Debug("worker stopped", zap.Int("worker", i))
		})
	}
}

// join must be called after the scheduler has been stopped.
func (p *workerPool) join() {
	p.wg.Wait()
}

func (p *workerPool) size() int {
	return int(p.n.Load())
}
