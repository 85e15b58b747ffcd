package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// site is an isolated site directory with a shell-script generator.
type site struct {
	dir       string
	published string
	config    string
}

// newSite builds a temp HOME, site and config. generate renders one page per post.
func newSite(t *testing.T, generate string) site {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	published := filepath.Join(t.TempDir(), "www", "blog")
	cfgPath := filepath.Join(home, "blogctl.yaml")
	yml := `site_dir: ` + dir + `
generator:
  preset: custom
  bin: sh
  clean_args: ["-c", "rm -rf public"]
  generate_args: ["-c", ` + strconvQuote(generate) + `]
publish:
  dir: ` + published + `
reload:
  method: none
`
	if err := os.WriteFile(cfgPath, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return site{dir: dir, published: published, config: cfgPath}
}

func strconvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

const renderScript = `mkdir -p public && for f in source/_posts/*.md; do n=$(basename "$f" .md); mkdir -p "public/$n"; grep '^title:' "$f" | sed 's/title: *//' > "public/$n/index.html"; done`

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset bound variables that persist across invocations
	cfgFile, debug, flagLogLevel, flagLogFormat = "", false, "", ""
	deployFailFast, deployDryRun = false, false
	postsListTag, postsNewCats, postsNewTags, postsNewFormat = "", nil, nil, "yaml"
	historyLimit = 10
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestCLI_PostsNewListCheck(t *testing.T) {
	s := newSite(t, renderScript)

	out := mustRun(t, "posts", "new", "Test", "--config", s.config, "--tag", "go", "--category", "notes")
	if !strings.Contains(out, "✓ Created") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(s.dir, "source", "_posts", "test.md")); err != nil {
		t.Fatalf("post not created: %v", err)
	}

	if _, err := runCmd(t, "posts", "new", "Test", "--config", s.config); err == nil {
		t.Fatalf("expected error for duplicate post")
	}

	out = mustRun(t, "posts", "list", "--config", s.config)
	if !strings.Contains(out, "TITLE") || !strings.Contains(out, "Test") || !strings.Contains(out, "notes") {
		t.Fatalf("list output missing post: %s", out)
	}
	mustRun(t, "posts", "check", "--config", s.config)

	bad := filepath.Join(s.dir, "source", "_posts", "broken.md")
	if err := os.WriteFile(bad, []byte("---\ntitle: Broken\n---\nbody\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCmd(t, "posts", "check", "--config", s.config)
	if !errors.Is(err, errContentProblems) {
		t.Fatalf("expected content problems, got %v", err)
	}
	if !strings.Contains(out, "broken.md") {
		t.Fatalf("check output should name broken.md: %s", out)
	}
}

func TestCLI_DeployVerifyHistory(t *testing.T) {
	s := newSite(t, renderScript)
	posts := filepath.Join(s.dir, "source", "_posts")
	if err := os.MkdirAll(posts, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(posts, "test.md"), []byte("---\ntitle: Test\ndate: 2025-01-01\n---\nHello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, "deploy", "--config", s.config)
	if !strings.Contains(out, "✓ Done") {
		t.Fatalf("unexpected deploy output: %s", out)
	}
	page, err := os.ReadFile(filepath.Join(s.published, "test", "index.html"))
	if err != nil {
		t.Fatalf("published page missing: %v", err)
	}
	if strings.TrimSpace(string(page)) != "Test" {
		t.Fatalf("unexpected page: %q", page)
	}

	mustRun(t, "verify", "--config", s.config)

	if err := os.WriteFile(filepath.Join(s.published, "stray.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "verify", "--config", s.config); !errors.Is(err, errPublishedDiffers) {
		t.Fatalf("expected verify to report a difference, got %v", err)
	}

	out = mustRun(t, "history", "--config", s.config)
	if !strings.Contains(out, "RUN") || !strings.Contains(out, "ok") {
		t.Fatalf("history output: %s", out)
	}
}

func TestCLI_DeployFailedGenerateRemovesPublished(t *testing.T) {
	s := newSite(t, "exit 3")
	if err := os.MkdirAll(s.published, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.published, "old.html"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "deploy", "--config", s.config)
	if err == nil {
		t.Fatalf("expected deploy to fail")
	}
	if !strings.Contains(out, "✗ generate") || !strings.Contains(out, "✗ copy") {
		t.Fatalf("expected generate and copy failures: %s", out)
	}
	if _, err := os.Stat(s.published); !os.IsNotExist(err) {
		t.Fatalf("published directory should be absent, stat err = %v", err)
	}
}

func TestCLI_DeployFailFastKeepsPublished(t *testing.T) {
	s := newSite(t, "exit 3")
	if err := os.MkdirAll(s.published, 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "deploy", "--fail-fast", "--config", s.config)
	if err == nil {
		t.Fatalf("expected deploy to fail")
	}
	if !strings.Contains(out, "- remove    skipped") {
		t.Fatalf("remove should be skipped: %s", out)
	}
	if _, err := os.Stat(s.published); err != nil {
		t.Fatalf("published directory should survive fail-fast: %v", err)
	}
}

func TestCLI_DeployDryRun(t *testing.T) {
	s := newSite(t, renderScript)

	out := mustRun(t, "deploy", "--dry-run", "--config", s.config)
	if !strings.Contains(out, "(dry run)") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(s.published); !os.IsNotExist(err) {
		t.Fatalf("dry run must not publish")
	}
}

func TestCLI_DeployRejectsArgs(t *testing.T) {
	s := newSite(t, renderScript)
	if _, err := runCmd(t, "deploy", "extra", "--config", s.config); err == nil {
		t.Fatalf("expected error for positional argument")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	s := newSite(t, renderScript)

	mustRun(t, "config", "set", "deploy.fail_fast", "true", "--config", s.config)
	out := mustRun(t, "config", "show", "--config", s.config)
	if !strings.Contains(out, "fail_fast: true") {
		t.Fatalf("config show: %s", out)
	}
	if _, err := runCmd(t, "config", "set", "reload.method", "carrier-pigeon", "--config", s.config); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := runCmd(t, "config", "set", "nope", "x", "--config", s.config); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
