// Package publish replaces the web server's published directory with generated output.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// ErrSourceMissing indicates the generated output directory does not exist.
	ErrSourceMissing = errors.New("generated output directory not found")
	// ErrUnsafeTarget guards against removing a filesystem root or a directory overlapping the source.
	ErrUnsafeTarget = errors.New("refusing to publish to unsafe target")
)

// Publisher copies Source to Target on Fs.
type Publisher struct {
	Fs     afero.Fs
	Source string
	Target string
	Logger *slog.Logger
}

// New returns a Publisher on the OS filesystem.
func New(source, target string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{Fs: afero.NewOsFs(), Source: source, Target: target, Logger: logger}
}

// Remove deletes the published directory. A missing directory is not an error.
func (p *Publisher) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.checkTarget(); err != nil {
		return err
	}
	if err := p.Fs.RemoveAll(p.Target); err != nil {
		return fmt.Errorf("remove %s: %w", p.Target, err)
	}
	p.Logger.Debug("published directory removed", "dir", p.Target)
	return nil
}

// Copy recursively copies the output directory into the published location,
// creating the target and its parents when absent.
func (p *Publisher) Copy(ctx context.Context) error {
	if err := p.checkTarget(); err != nil {
		return err
	}
	info, err := p.Fs.Stat(p.Source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, p.Source)
		}
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, p.Source)
	}
	var files int
	err = afero.Walk(p.Fs, p.Source, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(p.Source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(p.Target, rel)
		switch {
		case fi.IsDir():
			return p.Fs.MkdirAll(dst, fi.Mode().Perm()|0o700)
		case fi.Mode().IsRegular():
			files++
			return copyFile(p.Fs, path, dst, fi.Mode().Perm())
		default:
			p.Logger.Warn("skipping non-regular file", "path", path, "mode", fi.Mode().String())
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", p.Source, p.Target, err)
	}
	p.Logger.Debug("output copied", "from", p.Source, "to", p.Target, "files", files)
	return nil
}

// Publish runs Remove then Copy.
func (p *Publisher) Publish(ctx context.Context) error {
	if err := p.Remove(ctx); err != nil {
		return err
	}
	return p.Copy(ctx)
}

func (p *Publisher) checkTarget() error {
	t := filepath.Clean(p.Target)
	if p.Target == "" || t == string(filepath.Separator) || t == "." || filepath.Dir(t) == t {
		return fmt.Errorf("%w: %q", ErrUnsafeTarget, p.Target)
	}
	src := filepath.Clean(p.Source)
	if rel, err := filepath.Rel(t, src); err == nil && !startsWithDotDot(rel) {
		return fmt.Errorf("%w: %q contains the output directory", ErrUnsafeTarget, p.Target)
	}
	if rel, err := filepath.Rel(src, t); err == nil && !startsWithDotDot(rel) {
		return fmt.Errorf("%w: %q is inside the output directory", ErrUnsafeTarget, p.Target)
	}
	return nil
}

func startsWithDotDot(rel string) bool {
	return rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
