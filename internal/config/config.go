package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/blogctl/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// SiteDir is the generator project root; empty means search upward from the working directory.
	SiteDir    string `mapstructure:"site_dir" yaml:"site_dir"`
	ContentDir string `mapstructure:"content_dir" yaml:"content_dir" validate:"required"`
	StateDir   string `mapstructure:"state_dir" yaml:"state_dir" validate:"required"`

	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Publish   PublishConfig   `mapstructure:"publish" yaml:"publish"`
	Reload    ReloadConfig    `mapstructure:"reload" yaml:"reload"`
	Deploy    DeployConfig    `mapstructure:"deploy" yaml:"deploy"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Serve     ServeConfig     `mapstructure:"serve" yaml:"serve"`

	// siteDetected marks a SiteDir found by searching, which Save does not persist.
	siteDetected bool
}

// GeneratorConfig selects the external static-site generator. Empty fields fall
// back to the preset's conventions.
type GeneratorConfig struct {
	Preset       string   `mapstructure:"preset" yaml:"preset" validate:"oneof=hexo hugo custom"`
	Bin          string   `mapstructure:"bin" yaml:"bin" validate:"required_if=Preset custom"`
	CleanArgs    []string `mapstructure:"clean_args" yaml:"clean_args"`
	GenerateArgs []string `mapstructure:"generate_args" yaml:"generate_args"`
	OutputDir    string   `mapstructure:"output_dir" yaml:"output_dir"`
}

// PublishConfig locates the web server's published directory.
type PublishConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir" validate:"required"`
}

// ReloadConfig controls how the web server is told to reload.
type ReloadConfig struct {
	Method  string   `mapstructure:"method" yaml:"method" validate:"oneof=command signal none"`
	Command []string `mapstructure:"command" yaml:"command" validate:"required_if=Method command"`
	PIDFile string   `mapstructure:"pid_file" yaml:"pid_file" validate:"required_if=Method signal"`
}

// DeployConfig holds sequencing policy.
type DeployConfig struct {
	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" yaml:"format" validate:"oneof=text json pretty"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"min=0,max=1024"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"min=0,max=100"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
}

// ContentPath returns the content store location.
func (c *Global) ContentPath() string {
	if filepath.IsAbs(c.ContentDir) {
		return c.ContentDir
	}
	return filepath.Join(c.SiteDir, c.ContentDir)
}

// HistoryDir returns where deploy reports are kept.
func (c *Global) HistoryDir() string {
	return filepath.Join(c.StateDir, "deploys")
}

// DefaultPath returns ~/.blogctl/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".blogctl", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.blogctl/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	out := *c
	if out.siteDetected {
		out.SiteDir = ""
	}
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site_dir", "")
	v.SetDefault("content_dir", "source/_posts")
	v.SetDefault("state_dir", "~/.blogctl")

	v.SetDefault("generator.preset", "hexo")
	v.SetDefault("generator.bin", "")
	v.SetDefault("generator.clean_args", []string{})
	v.SetDefault("generator.generate_args", []string{})
	v.SetDefault("generator.output_dir", "")

	v.SetDefault("publish.dir", "/var/www/html/blog")

	v.SetDefault("reload.method", "command")
	v.SetDefault("reload.command", []string{"nginx", "-s", "reload"})
	v.SetDefault("reload.pid_file", "/run/nginx.pid")

	v.SetDefault("deploy.fail_fast", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("serve.addr", "127.0.0.1:4000")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (BLOGCTL_*, .env included) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix("BLOGCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.resolvePaths(); err != nil {
		return nil, err
	}
	return &c, nil
}

// resolvePaths expands ~ and locates the site root when it is not configured.
func (c *Global) resolvePaths() error {
	var err error
	if c.SiteDir == "" {
		root, ferr := utils.FindSiteRoot("")
		if ferr != nil {
			root, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working dir: %w", err)
			}
		}
		c.SiteDir = root
		c.siteDetected = true
	}
	for _, p := range []*string{&c.SiteDir, &c.StateDir, &c.Publish.Dir, &c.Log.File, &c.Metrics.Textfile, &c.Reload.PIDFile} {
		if *p == "" {
			continue
		}
		if *p, err = utils.ExpandHome(*p); err != nil {
			return err
		}
	}
	if c.SiteDir, err = filepath.Abs(c.SiteDir); err != nil {
		return fmt.Errorf("resolve site dir: %w", err)
	}
	return nil
}
