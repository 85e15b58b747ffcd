package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/blogctl/internal/config"
	"github.com/KaramelBytes/blogctl/internal/content"
	"github.com/KaramelBytes/blogctl/internal/deploy"
	"github.com/KaramelBytes/blogctl/internal/generator"
	"github.com/KaramelBytes/blogctl/internal/publish"
	"github.com/KaramelBytes/blogctl/internal/reload"
)

// newGenerator resolves the configured preset, letting explicit settings win.
func newGenerator(c *cfgpkg.Global, logger *slog.Logger) (*generator.Exec, error) {
	p, ok := generator.LookupPreset(c.Generator.Preset)
	if !ok && c.Generator.Preset != generator.PresetCustom {
		return nil, fmt.Errorf("unknown generator preset: %s", c.Generator.Preset)
	}
	if c.Generator.Bin != "" {
		p.Bin = c.Generator.Bin
	}
	if len(c.Generator.CleanArgs) > 0 {
		p.CleanArgs = c.Generator.CleanArgs
	}
	if len(c.Generator.GenerateArgs) > 0 {
		p.GenerateArgs = c.Generator.GenerateArgs
	}
	if c.Generator.OutputDir != "" {
		p.OutputDir = c.Generator.OutputDir
	}
	if p.OutputDir == "" {
		p.OutputDir = "public"
	}
	if p.Bin == "" {
		return nil, fmt.Errorf("generator.bin is required for preset %s", c.Generator.Preset)
	}
	return generator.NewExec(c.SiteDir, p, logger), nil
}

func newPublisher(c *cfgpkg.Global, gen generator.Generator, logger *slog.Logger) *publish.Publisher {
	return publish.New(gen.OutputDir(), c.Publish.Dir, logger)
}

func newReloader(c *cfgpkg.Global, logger *slog.Logger) (reload.Reloader, error) {
	return reload.New(reload.Options{
		Method:  c.Reload.Method,
		Command: c.Reload.Command,
		PIDFile: c.Reload.PIDFile,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}, logger)
}

func newSequencer(c *cfgpkg.Global, logger *slog.Logger) (*deploy.Sequencer, error) {
	gen, err := newGenerator(c, logger)
	if err != nil {
		return nil, err
	}
	rl, err := newReloader(c, logger)
	if err != nil {
		return nil, err
	}
	return &deploy.Sequencer{
		Generator: gen,
		Publisher: newPublisher(c, gen, logger),
		Reloader:  rl,
		FailFast:  c.Deploy.FailFast,
		Logger:    logger,
	}, nil
}

func newStore(c *cfgpkg.Global, logger *slog.Logger) *content.Store {
	return content.NewStore(c.ContentPath(), logger)
}
