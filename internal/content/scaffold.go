package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/KaramelBytes/blogctl/internal/frontmatter"
	"github.com/KaramelBytes/blogctl/internal/utils"
)

// ErrPostExists is returned when New would overwrite an existing file.
var ErrPostExists = errors.New("post already exists")

// NewOptions controls scaffolding of a new post.
type NewOptions struct {
	Categories []string
	Tags       []string
	Format     frontmatter.Format
	// Now is used for the date attribute; zero means time.Now().
	Now time.Time
}

// header fixes the key order of scaffolded front matter.
type header struct {
	Title      string   `yaml:"title" toml:"title" json:"title"`
	Date       string   `yaml:"date" toml:"date" json:"date"`
	Categories []string `yaml:"categories" toml:"categories" json:"categories"`
	Tags       []string `yaml:"tags" toml:"tags" json:"tags"`
}

var slugUnsafe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug converts a title into a file-name-safe slug.
func Slug(title string) string {
	s := slugUnsafe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(s, "-")
}

// New writes a new post with front matter only and returns its path.
func (s *Store) New(title string, opts NewOptions) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrMissingTitle
	}
	slug := Slug(title)
	if slug == "" {
		return "", fmt.Errorf("title %q produces an empty file name", title)
	}
	format := opts.Format
	if format == "" {
		format = frontmatter.YAML
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if err := utils.EnsureDir(s.Root); err != nil {
		return "", fmt.Errorf("ensure content dir: %w", err)
	}
	path := filepath.Join(s.Root, slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrPostExists, path)
	}
	h := header{
		Title:      title,
		Date:       now.Format("2006-01-02 15:04:05"),
		Categories: nonNil(opts.Categories),
		Tags:       dedupe(nonNil(opts.Tags)),
	}
	data, err := frontmatter.Encode(format, h, "")
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrPostExists, path)
		}
		return "", fmt.Errorf("create post: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write post: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close post: %w", err)
	}
	s.Logger.Info("post created", "path", path, "title", title)
	return path, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
