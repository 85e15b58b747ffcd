package publish

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memPublisher(t *testing.T, files map[string]string) *Publisher {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		p := filepath.Join("/site/public", name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(data), 0o644))
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Publisher{Fs: fs, Source: "/site/public", Target: "/var/www/html/blog", Logger: logger}
}

var site = map[string]string{
	"index.html":                 "<h1>home</h1>",
	"2025/01/01/test/index.html": "<h1>Test</h1>",
	"css/style.css":              "body{}",
}

func TestPublishCreatesMissingTarget(t *testing.T) {
	p := memPublisher(t, site)

	require.NoError(t, p.Publish(context.Background()))

	data, err := afero.ReadFile(p.Fs, "/var/www/html/blog/2025/01/01/test/index.html")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Test</h1>", string(data))

	diff, err := p.Verify()
	require.NoError(t, err)
	assert.True(t, diff.Empty(), "diff: %+v", diff)
}

func TestPublishReplacesStaleFiles(t *testing.T) {
	p := memPublisher(t, site)
	require.NoError(t, p.Fs.MkdirAll("/var/www/html/blog/old", 0o755))
	require.NoError(t, afero.WriteFile(p.Fs, "/var/www/html/blog/old/gone.html", []byte("stale"), 0o644))
	require.NoError(t, afero.WriteFile(p.Fs, "/var/www/html/blog/index.html", []byte("previous"), 0o644))

	require.NoError(t, p.Publish(context.Background()))

	exists, err := afero.Exists(p.Fs, "/var/www/html/blog/old/gone.html")
	require.NoError(t, err)
	assert.False(t, exists)
	diff, err := p.Verify()
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}

func TestPublishIsIdempotent(t *testing.T) {
	p := memPublisher(t, site)

	require.NoError(t, p.Publish(context.Background()))
	first, err := BuildManifest(p.Fs, p.Target)
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background()))
	second, err := BuildManifest(p.Fs, p.Target)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, len(site))
}

func TestCopyMissingSourceLeavesTargetRemoved(t *testing.T) {
	p := memPublisher(t, nil)
	require.NoError(t, p.Fs.MkdirAll(p.Target, 0o755))
	require.NoError(t, afero.WriteFile(p.Fs, filepath.Join(p.Target, "index.html"), []byte("live"), 0o644))

	require.NoError(t, p.Remove(context.Background()))
	err := p.Copy(context.Background())

	require.ErrorIs(t, err, ErrSourceMissing)
	exists, _ := afero.DirExists(p.Fs, p.Target)
	assert.False(t, exists, "previous site is not preserved")
}

func TestRemoveMissingTargetIsNotAnError(t *testing.T) {
	p := memPublisher(t, site)
	assert.NoError(t, p.Remove(context.Background()))
}

func TestUnsafeTargets(t *testing.T) {
	for _, target := range []string{"", "/", "/site", "/site/public", "/site/public/www", "/site/public/a/b/"} {
		p := memPublisher(t, site)
		p.Target = target
		assert.ErrorIs(t, p.Remove(context.Background()), ErrUnsafeTarget, "target %q", target)
		assert.ErrorIs(t, p.Copy(context.Background()), ErrUnsafeTarget, "target %q", target)
	}
}

func TestTargetInsideOutputLeavesOutputIntact(t *testing.T) {
	p := memPublisher(t, site)
	p.Target = "/site/public/www"

	require.ErrorIs(t, p.Publish(context.Background()), ErrUnsafeTarget)

	m, err := BuildManifest(p.Fs, p.Source)
	require.NoError(t, err)
	assert.Len(t, m, len(site))
}

func TestSiblingTargetWithSharedPrefixIsAllowed(t *testing.T) {
	p := memPublisher(t, site)
	p.Target = "/site/public-www"

	require.NoError(t, p.Publish(context.Background()))
	diff, err := p.Verify()
	require.NoError(t, err)
	assert.True(t, diff.Empty())
}

func TestCopyHonorsCancellation(t *testing.T) {
	p := memPublisher(t, site)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Copy(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCopyPreservesModesOnDisk(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh\n"), 0o755))
	p := New(src, filepath.Join(root, "www", "blog"), nil)

	require.NoError(t, p.Publish(context.Background()))

	fi, err := os.Stat(filepath.Join(root, "www", "blog", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())
}

func TestCompare(t *testing.T) {
	want := Manifest{"a": "1", "b": "2", "c": "3"}
	got := Manifest{"a": "1", "b": "x", "d": "4"}

	d := Compare(want, got)

	assert.Equal(t, []string{"d"}, d.Added)
	assert.Equal(t, []string{"c"}, d.Removed)
	assert.Equal(t, []string{"b"}, d.Changed)
	assert.False(t, d.Empty())
}
