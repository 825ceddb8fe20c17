//go:build linux

package cpus

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// available counts the CPUs in the affinity mask of the process, which can
// be narrower than the machine (taskset, cpusets).
func available() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return runtime.NumCPU()
	}
	if n := set.Count(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}
