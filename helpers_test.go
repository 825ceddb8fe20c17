package asyncmain_test

import (
	"runtime"
	"strings"
	"testing"
)

// goid returns the id of the calling goroutine, for telling goroutines apart
// in tests.
func goid() string {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	return strings.Fields(string(b))[1]
}

// recoverPanic calls f and returns what it panicked with, or nil.
func recoverPanic(t *testing.T, f func()) (v any) {
	t.Helper()
	defer func() { v = recover() }()
	f()
	return nil
}
