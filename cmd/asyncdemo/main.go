// Command asyncdemo spawns a number of tasks on an executor and waits for
// them, showing how asyncmain sets executors up and reports failures.
package main

import "github.com/b97tsk/asyncmain"

func main() {
	asyncmain.Exit(newRootCmd().Execute())
}
