package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Manifest maps slash-separated relative paths to SHA-256 digests of file contents.
type Manifest map[string]string

// Diff lists paths that differ between two manifests.
type Diff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Empty reports whether the manifests were identical.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// BuildManifest digests every regular file under dir.
func BuildManifest(fs afero.Fs, dir string) (Manifest, error) {
	m := Manifest{}
	err := afero.Walk(fs, dir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		sum, err := digest(fs, path)
		if err != nil {
			return err
		}
		m[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Compare returns what changes turn want into got.
func Compare(want, got Manifest) Diff {
	var d Diff
	for p, sum := range want {
		other, ok := got[p]
		switch {
		case !ok:
			d.Removed = append(d.Removed, p)
		case other != sum:
			d.Changed = append(d.Changed, p)
		}
	}
	for p := range got {
		if _, ok := want[p]; !ok {
			d.Added = append(d.Added, p)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

// Verify compares the published directory against the generated output.
func (p *Publisher) Verify() (Diff, error) {
	want, err := BuildManifest(p.Fs, p.Source)
	if err != nil {
		return Diff{}, err
	}
	got, err := BuildManifest(p.Fs, p.Target)
	if err != nil {
		return Diff{}, err
	}
	return Compare(want, got), nil
}

func digest(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
