package content

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/blogctl/internal/frontmatter"
	"github.com/KaramelBytes/blogctl/internal/utils"
)

// Post is a markdown content file with its front matter decoded.
type Post struct {
	Path       string             `json:"path"`
	Title      string             `json:"title"`
	Date       time.Time          `json:"date"`
	Categories []string           `json:"categories"`
	Tags       []string           `json:"tags"`
	Body       string             `json:"-"`
	Format     frontmatter.Format `json:"format"`
	// Extra holds front matter keys other than the known attributes.
	Extra map[string]any `json:"extra,omitempty"`
}

// Summary is a short description of a post body.
type Summary struct {
	Words          int
	ReadingMinutes int
}

var (
	ErrMissingTitle = errors.New("missing title")
	ErrMissingDate  = errors.New("missing date")
	ErrInvalidDate  = errors.New("invalid date")
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParsePost decodes a content file. Problems with individual attributes are
// returned alongside the post so callers can report them without losing the file.
func ParsePost(path string, data []byte) (*Post, []error, error) {
	fm, body, format, err := frontmatter.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	p := &Post{
		Path:   path,
		Body:   body,
		Format: format,
		Extra:  map[string]any{},
	}
	var problems []error
	for k, v := range fm {
		switch strings.ToLower(k) {
		case "title":
			p.Title = scalarString(v)
		case "date":
			d, err := parseDate(v)
			if err != nil {
				problems = append(problems, err)
				continue
			}
			p.Date = d
		case "categories", "category":
			p.Categories = append(p.Categories, stringList(v)...)
		case "tags", "tag":
			p.Tags = dedupe(append(p.Tags, stringList(v)...))
		default:
			p.Extra[k] = v
		}
	}
	if p.Title == "" {
		problems = append(problems, ErrMissingTitle)
	}
	if p.Date.IsZero() && !hasDateProblem(problems) {
		problems = append(problems, ErrMissingDate)
	}
	return p, problems, nil
}

// Summarize returns word count and reading time for the post body.
func (p *Post) Summarize() Summary {
	return Summary{
		Words:          utils.CountWords(p.Body),
		ReadingMinutes: utils.ReadingMinutes(p.Body),
	}
}

// HasTag reports whether the post carries the tag, case-insensitively.
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, ErrMissingDate
	case time.Time:
		return d, nil
	case interface{ AsTime(*time.Location) time.Time }:
		// TOML local dates and datetimes
		return d.AsTime(time.Local), nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, ErrMissingDate
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	default:
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, v)
	}
}

// scalarString renders a scalar attribute; a null value is empty.
func scalarString(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func hasDateProblem(problems []error) bool {
	for _, e := range problems {
		if errors.Is(e, ErrInvalidDate) || errors.Is(e, ErrMissingDate) {
			return true
		}
	}
	return false
}

// stringList accepts a scalar or a list. Nested lists (hexo category hierarchies)
// are flattened in order.
func stringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return []string{s}
		}
		return nil
	case []string:
		var out []string
		for _, s := range x {
			out = append(out, stringList(s)...)
		}
		return out
	case []any:
		var out []string
		for _, e := range x {
			out = append(out, stringList(e)...)
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
