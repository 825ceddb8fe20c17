package asyncmain

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	stderr io.Writer = os.Stderr
	osExit           = os.Exit
)

// ExitCoder is implemented by errors that choose the exit status of
// the process when they reach [Exit].
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the exit status for err: 0 if err is nil, the non-zero
// ExitCode of the first [ExitCoder] in err's tree, or else 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		if code := ec.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}

// Exit returns if err is nil. Otherwise, it writes err to standard error
// with [Render] and exits the process with [ExitCode](err).
func Exit(err error) {
	if err == nil {
		return
	}
	Render(stderr, err)
	osExit(ExitCode(err))
}

// Render writes err to w as a single "Error: ..." line.
// The label is colored when w is a terminal and NO_COLOR is not set.
func Render(w io.Writer, err error) {
	label := "Error:"
	if colorable(w) {
		c := color.New(color.FgRed, color.Bold)
		c.EnableColor()
		label = c.Sprint(label)
	}
	fmt.Fprintf(w, "%s %v\n", label, err)
}

func colorable(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
