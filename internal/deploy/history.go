package deploy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/blogctl/internal/utils"
)

var (
	// ErrReportNotFound indicates no report exists for a run id.
	ErrReportNotFound = errors.New("deploy report not found")
	// ErrInvalidRunID rejects ids that are not a plain file name.
	ErrInvalidRunID = errors.New("invalid run id")
)

// History persists deploy reports as one JSON file per run.
type History struct {
	Dir string
}

// NewHistory returns a History rooted at dir.
func NewHistory(dir string) *History { return &History{Dir: dir} }

// Save writes the report using an atomic write.
func (h *History) Save(r *Report) error {
	if h.Dir == "" {
		return errors.New("history directory not set")
	}
	if err := utils.EnsureDir(h.Dir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := utils.PrettyJSON(r)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(h.Dir, r.RunID+".json"), data)
}

// Load reads one report by run id. A unique id prefix is accepted.
func (h *History) Load(id string) (*Report, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\*?[`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	path := filepath.Join(h.Dir, id+".json")
	if _, err := os.Stat(path); err != nil {
		matches, _ := filepath.Glob(filepath.Join(h.Dir, id+"*.json"))
		if len(matches) != 1 {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		path = matches[0]
	}
	return readReport(path)
}

// List returns up to limit reports, newest first. A limit <= 0 returns all.
func (h *History) List(limit int) ([]*Report, error) {
	entries, err := os.ReadDir(h.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var reports []*Report
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		r, err := readReport(filepath.Join(h.Dir, e.Name()))
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StartedAt.After(reports[j].StartedAt)
	})
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

func readReport(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return &r, nil
}
