package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent file parsing during Load.
const DefaultWorkers = 8

var supportedExtensions = []string{".md", ".markdown"}

// Store is a directory of markdown posts. Only New writes into it.
type Store struct {
	Root    string
	Workers int
	Logger  *slog.Logger
}

// Problem describes something wrong with one content file.
type Problem struct {
	Path string
	Err  error
}

func (p Problem) Error() string { return fmt.Sprintf("%s: %v", p.Path, p.Err) }

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Root: dir, Workers: DefaultWorkers, Logger: logger}
}

// Files lists content files under the store root in lexical order.
func (s *Store) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir():
			return nil
		case strings.HasPrefix(d.Name(), "."):
			return nil
		case !hasExt(d.Name(), supportedExtensions...):
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("content directory not found at %s: %w", s.Root, err)
		}
		return nil, fmt.Errorf("walk content: %w", err)
	}
	return files, nil
}

// Load parses every post in the store. Files whose front matter cannot be read are
// skipped and logged; the returned posts are ordered newest first.
func (s *Store) Load(ctx context.Context) ([]*Post, error) {
	posts, _, err := s.scan(ctx)
	return posts, err
}

// Check parses every post and returns per-file problems. A non-nil error means the
// store itself could not be read.
func (s *Store) Check(ctx context.Context) ([]Problem, error) {
	_, problems, err := s.scan(ctx)
	return problems, err
}

func (s *Store) scan(ctx context.Context) ([]*Post, []Problem, error) {
	files, err := s.Files()
	if err != nil {
		return nil, nil, err
	}
	var (
		mu       sync.Mutex
		posts    = make([]*Post, 0, len(files))
		problems []Problem
	)
	g, ctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			p, fieldProblems, err := ParsePost(path, data)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.Logger.Warn("skipping post", "path", path, "error", err)
				problems = append(problems, Problem{Path: path, Err: errors.Unwrap(err)})
				return nil
			}
			for _, fp := range fieldProblems {
				problems = append(problems, Problem{Path: path, Err: fp})
			}
			posts = append(posts, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Path < posts[j].Path
	})
	sort.SliceStable(problems, func(i, j int) bool { return problems[i].Path < problems[j].Path })
	s.Logger.Debug("content loaded", "root", s.Root, "posts", len(posts), "problems", len(problems))
	return posts, problems, nil
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
