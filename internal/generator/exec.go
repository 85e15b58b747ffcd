package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Exec runs a generator binary inside the site directory.
type Exec struct {
	Bin          string
	SiteDir      string
	CleanArgs    []string
	GenerateArgs []string
	Output       string
	Env          []string
	// Stdout and Stderr receive the tool's own output.
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// NewExec builds an Exec from a preset, letting non-empty overrides win.
func NewExec(siteDir string, p Preset, logger *slog.Logger) *Exec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exec{
		Bin:          p.Bin,
		SiteDir:      siteDir,
		CleanArgs:    p.CleanArgs,
		GenerateArgs: p.GenerateArgs,
		Output:       p.OutputDir,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Logger:       logger,
	}
}

// OutputDir returns the generated site location, resolved against the site directory.
func (e *Exec) OutputDir() string {
	if filepath.IsAbs(e.Output) {
		return e.Output
	}
	return filepath.Join(e.SiteDir, e.Output)
}

// Clean runs the clean command, or removes the output directory when none is configured.
func (e *Exec) Clean(ctx context.Context) error {
	if len(e.CleanArgs) == 0 {
		if err := e.checkOutput(); err != nil {
			return err
		}
		e.Logger.Debug("no clean command, removing output directory", "dir", e.OutputDir())
		if err := os.RemoveAll(e.OutputDir()); err != nil {
			return fmt.Errorf("clean: remove output: %w", err)
		}
		return nil
	}
	return e.run(ctx, "clean", e.CleanArgs)
}

// checkOutput rejects an output directory that is a root, the site directory,
// or one of its parents.
func (e *Exec) checkOutput() error {
	out := filepath.Clean(e.OutputDir())
	if e.Output == "" || filepath.Dir(out) == out {
		return fmt.Errorf("%w: %q", ErrUnsafeOutput, e.Output)
	}
	site, err := filepath.Abs(e.SiteDir)
	if err != nil {
		return fmt.Errorf("resolve site dir: %w", err)
	}
	abs, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	if rel, err := filepath.Rel(abs, site); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q contains the site directory", ErrUnsafeOutput, e.Output)
	}
	return nil
}

// Generate runs the generate command.
func (e *Exec) Generate(ctx context.Context) error {
	return e.run(ctx, "generate", e.GenerateArgs)
}

func (e *Exec) run(ctx context.Context, step string, args []string) error {
	argv := append([]string{e.Bin}, args...)
	path, err := exec.LookPath(e.Bin)
	if err != nil {
		return &CommandError{Step: step, Args: argv, Err: fmt.Errorf("%w: %s", ErrBinaryNotFound, e.Bin)}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = e.SiteDir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	start := time.Now()
	e.Logger.Debug("running generator", "step", step, "args", argv, "dir", e.SiteDir)
	err = cmd.Run()
	e.Logger.Debug("generator finished", "step", step, "duration", time.Since(start))
	if err == nil {
		return nil
	}
	ce := &CommandError{Step: step, Args: argv, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}
	return ce
}
