package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/KaramelBytes/blogctl/internal/config"
	"github.com/KaramelBytes/blogctl/internal/logging"
	"github.com/spf13/cobra"
)

// skipValidation marks commands that must run even with an invalid configuration.
const skipValidation = "skip-validation"

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "blogctl: generate and publish a static blog",
	Long: `blogctl drives a static-site generator (hexo, hugo or a custom binary) over a
store of markdown posts and publishes the output to the web server's directory:
clean, generate, remove the published directory, copy the output, reload.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.blogctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text, json, pretty (overrides config)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("log-level") && flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		c.Log.Format = flagLogFormat
	}
	if debug {
		c.Log.Level = "debug"
	}

	if _, skip := cmd.Annotations[skipValidation]; !skip {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c

	logger = logging.New(logging.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
	})
	slog.SetDefault(logger)
	logger.Debug("config loaded", "site_dir", c.SiteDir, "publish_dir", c.Publish.Dir, "preset", c.Generator.Preset)
	return nil
}
