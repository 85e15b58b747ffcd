package deploy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/blogctl/internal/generator"
	"github.com/KaramelBytes/blogctl/internal/publish"
	"github.com/KaramelBytes/blogctl/internal/reload"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder stands in for every collaborator and records call order.
type recorder struct {
	calls []string
	fail  map[string]error
}

func (r *recorder) call(name string) error {
	r.calls = append(r.calls, name)
	return r.fail[name]
}

func (r *recorder) Clean(context.Context) error    { return r.call(StepClean) }
func (r *recorder) Generate(context.Context) error { return r.call(StepGenerate) }
func (r *recorder) OutputDir() string              { return "public" }
func (r *recorder) Remove(context.Context) error   { return r.call(StepRemove) }
func (r *recorder) Copy(context.Context) error     { return r.call(StepCopy) }
func (r *recorder) Reload(context.Context) error   { return r.call(StepReload) }

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newRecorded(fail map[string]error) (*Sequencer, *recorder) {
	rec := &recorder{fail: fail}
	return &Sequencer{Generator: rec, Publisher: rec, Reloader: rec, Logger: quietLogger()}, rec
}

var allSteps = []string{StepClean, StepGenerate, StepRemove, StepCopy, StepReload}

func TestRunExecutesStepsInOrder(t *testing.T) {
	s, rec := newRecorded(nil)

	r, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, allSteps, rec.calls)
	assert.True(t, r.OK())
	assert.NotEmpty(t, r.RunID)
	require.Len(t, r.Steps, 5)
	for _, st := range r.Steps {
		assert.Equal(t, StatusOK, st.Status)
	}
}

func TestRunContinuesAfterFailureByDefault(t *testing.T) {
	boom := errors.New("generator crashed")
	s, rec := newRecorded(map[string]error{StepGenerate: boom})

	r, err := s.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StepGenerate, se.Step)
	assert.Equal(t, allSteps, rec.calls, "later steps still run")
	assert.Equal(t, StatusFailed, r.Steps[1].Status)
	assert.Equal(t, "generator crashed", r.Steps[1].Error)
	assert.Equal(t, StatusOK, r.Steps[4].Status)
}

func TestRunJoinsEveryFailure(t *testing.T) {
	e1, e2 := errors.New("no output"), errors.New("nginx not running")
	s, _ := newRecorded(map[string]error{StepCopy: e1, StepReload: e2})

	r, err := s.Run(context.Background())

	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.Len(t, r.Failed(), 2)
}

func TestRunFailFastSkipsRemainingSteps(t *testing.T) {
	s, rec := newRecorded(map[string]error{StepGenerate: errors.New("bad template")})
	s.FailFast = true

	r, err := s.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{StepClean, StepGenerate}, rec.calls)
	for _, st := range r.Steps[2:] {
		assert.Equal(t, StatusSkipped, st.Status, st.Name)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	s, rec := newRecorded(nil)
	s.DryRun = true

	r, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rec.calls)
	assert.True(t, r.DryRun)
	for _, st := range r.Steps {
		assert.Equal(t, StatusSkipped, st.Status)
	}
}

func TestRunCancelledContext(t *testing.T) {
	s, rec := newRecorded(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.calls)
}

func TestRunRecordsDurations(t *testing.T) {
	s, _ := newRecorded(nil)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	r, err := s.Run(context.Background())

	require.NoError(t, err)
	for _, st := range r.Steps {
		assert.Equal(t, time.Second, st.Duration, st.Name)
	}
	assert.Equal(t, 11*time.Second, r.Duration())
}

// shellSite wires the real generator, publisher and reloader against a temp site
// whose "generator" is a shell script rendering one page per post.
func shellSite(t *testing.T, generate string) (*Sequencer, string, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	site := filepath.Join(root, "site")
	posts := filepath.Join(site, "source", "_posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "test.md"),
		[]byte("---\ntitle: \"Test\"\ndate: 2025-01-01\n---\nHello.\n"), 0o644))

	gen := generator.NewExec(site, generator.Preset{Bin: "sh", OutputDir: "public"}, quietLogger())
	gen.CleanArgs = []string{"-c", "rm -rf public"}
	gen.GenerateArgs = []string{"-c", generate}
	gen.Stdout, gen.Stderr = io.Discard, io.Discard

	published := filepath.Join(root, "www", "html", "blog")
	pub := publish.New(gen.OutputDir(), published, quietLogger())
	rl, err := reload.New(reload.Options{Method: reload.MethodNone}, quietLogger())
	require.NoError(t, err)
	return &Sequencer{Generator: gen, Publisher: pub, Reloader: rl, Logger: quietLogger()}, gen.OutputDir(), published
}

const renderPosts = `mkdir -p public && for f in source/_posts/*.md; do
  n=$(basename "$f" .md); t=$(sed -n 's/^title: *"\{0,1\}\([^"]*\)"\{0,1\}$/\1/p' "$f")
  mkdir -p "public/$n" && printf '<h1>%s</h1>\n' "$t" > "public/$n/index.html"
done`

func TestDeployPublishesRenderedPage(t *testing.T) {
	s, out, published := shellSite(t, renderPosts)

	r, err := s.Run(context.Background())

	require.NoError(t, err)
	assert.True(t, r.OK())
	page, err := os.ReadFile(filepath.Join(published, "test", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>Test</h1>\n", string(page))

	diff, err := publish.New(out, published, quietLogger()).Verify()
	require.NoError(t, err)
	assert.True(t, diff.Empty(), "published differs from output: %+v", diff)
}

func TestDeployTwiceIsIdempotent(t *testing.T) {
	s, _, published := shellSite(t, renderPosts)

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	first, err := publish.BuildManifest(afero.NewOsFs(), published)
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)
	second, err := publish.BuildManifest(afero.NewOsFs(), published)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeployFailedGenerateLeavesPublishedRemoved(t *testing.T) {
	s, _, published := shellSite(t, renderPosts)
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	broken, _, _ := shellSite(t, "exit 2")
	broken.Publisher = publish.New(broken.Generator.OutputDir(), published, quietLogger())

	r, err := broken.Run(context.Background())

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "generate"))
	assert.Equal(t, StatusFailed, r.Steps[1].Status)
	assert.Equal(t, StatusOK, r.Steps[2].Status)
	assert.Equal(t, StatusFailed, r.Steps[3].Status)
	assert.ErrorIs(t, err, publish.ErrSourceMissing)
	_, statErr := os.Stat(published)
	assert.True(t, os.IsNotExist(statErr), "previous site is not preserved")
}
