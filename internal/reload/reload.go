// Package reload signals a running web server to pick up new content.
package reload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// Reload methods accepted in configuration.
const (
	MethodCommand = "command"
	MethodSignal  = "signal"
	MethodNone    = "none"
)

var (
	// ErrEmptyCommand indicates the command method was chosen without a command.
	ErrEmptyCommand = errors.New("reload command is empty")
	// ErrBadPIDFile indicates the pid file does not hold a positive process id.
	ErrBadPIDFile = errors.New("invalid pid file")
	// ErrUnknown indicates a reload method other than command, signal or none.
	ErrUnknown = errors.New("unknown reload method")
)

// Reloader makes a running web server reload its content.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Options selects and configures a Reloader.
type Options struct {
	Method  string
	Command []string
	PIDFile string
	Stdout  io.Writer
	Stderr  io.Writer
}

// New builds the Reloader for opts.Method.
func New(opts Options, logger *slog.Logger) (Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch opts.Method {
	case MethodCommand, "":
		if len(opts.Command) == 0 {
			return nil, ErrEmptyCommand
		}
		return &Command{Args: opts.Command, Stdout: opts.Stdout, Stderr: opts.Stderr, Logger: logger}, nil
	case MethodSignal:
		return &Signal{PIDFile: opts.PIDFile, Sig: syscall.SIGHUP, Logger: logger}, nil
	case MethodNone:
		return Noop{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknown, opts.Method)
	}
}

// Command runs an external control command such as "nginx -s reload".
type Command struct {
	Args   []string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func (c *Command) Reload(ctx context.Context) error {
	if len(c.Args) == 0 {
		return ErrEmptyCommand
	}
	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	c.Logger.Debug("reloading web server", "command", c.Args)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("reload %q: %w", strings.Join(c.Args, " "), err)
	}
	return nil
}

// Signal sends Sig to the process whose id is stored in PIDFile.
type Signal struct {
	PIDFile string
	Sig     os.Signal
	Logger  *slog.Logger
}

func (s *Signal) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pid, err := ReadPID(s.PIDFile)
	if err != nil {
		return err
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	s.Logger.Debug("signalling web server", "pid", pid, "signal", s.Sig.String())
	if err := proc.Signal(s.Sig); err != nil {
		return fmt.Errorf("signal process %d: %w", pid, err)
	}
	return nil
}

// ReadPID parses a pid file as written by nginx and most daemons.
func ReadPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadPIDFile, path)
	}
	return pid, nil
}

// Noop skips the reload step, for servers that pick up file changes on their own.
type Noop struct {
	Logger *slog.Logger
}

func (n Noop) Reload(context.Context) error {
	n.Logger.Info("reload disabled, skipping")
	return nil
}
