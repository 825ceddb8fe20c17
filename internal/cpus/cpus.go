// Package cpus reports how many logical processors the process may run on.
package cpus

// Available returns the number of logical processors the process may run on.
// It is at least 1.
//
// GOMAXPROCS is not taken into account.
func Available() int {
	return max(available(), 1)
}
