package asyncmain

import "io"

// SetExitHooks replaces the writer and the exit function used by Exit until
// the returned function is called.
func SetExitHooks(w io.Writer, exit func(code int)) (restore func()) {
	prevStderr, prevExit := stderr, osExit
	stderr, osExit = w, exit
	return func() { stderr, osExit = prevStderr, prevExit }
}
