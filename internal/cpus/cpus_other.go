//go:build !linux

package cpus

import "runtime"

func available() int {
	return runtime.NumCPU()
}
