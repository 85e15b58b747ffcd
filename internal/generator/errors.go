package generator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBinaryNotFound indicates the generator executable is not on PATH.
	ErrBinaryNotFound = errors.New("generator binary not found")
	// ErrUnsafeOutput refuses to remove an output directory that is a filesystem
	// root or holds the site itself.
	ErrUnsafeOutput = errors.New("refusing to remove unsafe output directory")
)

// CommandError reports a generator invocation that did not exit cleanly.
type CommandError struct {
	Step     string
	Args     []string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s: %q exited with status %d", e.Step, cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s: %q failed: %v", e.Step, cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
