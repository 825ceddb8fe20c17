package asyncmain

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

type panicstack []panicitem

func (ps panicstack) Repanic() {
	if len(ps) != 0 {
		panic(&panicvalue{items: ps})
	}
}

// Try calls f and reports whether f returned normally.
// A panic in f is recorded in ps. A runtime.Goexit in f is left unwinding.
func (ps *panicstack) Try(f func()) (ok bool) {
	defer func() {
		if !ok {
			if v := recover(); v != nil {
				ps.push(v, debug.Stack())
			}
		}
	}()
	f()
	return true
}

func (ps *panicstack) push(v any, stack []byte) {
	if pv, ok := v.(*panicvalue); ok {
		// Re-raised by a Wait inside this task. Keep the original stacks.
		for _, p := range pv.items {
			p.waited = true
			*ps = append(*ps, p)
		}
		return
	}
	*ps = append(*ps, panicitem{value: v, stack: stack})
}

type panicitem struct {
	value  any
	stack  []byte
	waited bool
}

type panicvalue struct {
	items []panicitem
	errs  atomic.Pointer[[]error]
}

func (pv *panicvalue) Error() string {
	var b strings.Builder
	b.WriteString("as follows:")
	for i, p := range pv.items {
		fmt.Fprintf(&b, "\n(%d/%d) panic: %v", i+1, len(pv.items), p.value)
		if p.waited {
			b.WriteString(" (waited)")
		}
		if p.stack != nil {
			b.WriteString("\n\n")
			b.Write(p.stack)
		}
	}
	return b.String()
}

func (pv *panicvalue) Unwrap() []error {
	if p := pv.errs.Load(); p != nil {
		return *p
	}
	var errs []error
	for _, p := range pv.items {
		if err, ok := p.value.(error); ok {
			errs = append(errs, err)
		}
	}
	pv.errs.Store(&errs)
	return errs
}
