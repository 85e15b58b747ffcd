package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/blogctl/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "View or set blogctl configuration",
	Annotations: map[string]string{skipValidation: "true"},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:         "set <key> <value>",
	Short:       "Set a config value and save to disk",
	Long:        "Set a config value and save to disk. List values (clean_args, generate_args, reload.command) are split on whitespace.",
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "site_dir":
		c.SiteDir = val
	case "content_dir":
		c.ContentDir = val
	case "state_dir":
		c.StateDir = val
	case "generator.preset":
		c.Generator.Preset = strings.ToLower(val)
	case "generator.bin":
		c.Generator.Bin = val
	case "generator.clean_args":
		c.Generator.CleanArgs = strings.Fields(val)
	case "generator.generate_args":
		c.Generator.GenerateArgs = strings.Fields(val)
	case "generator.output_dir":
		c.Generator.OutputDir = val
	case "publish.dir":
		c.Publish.Dir = val
	case "reload.method":
		c.Reload.Method = strings.ToLower(val)
	case "reload.command":
		c.Reload.Command = strings.Fields(val)
	case "reload.pid_file":
		c.Reload.PIDFile = val
	case "deploy.fail_fast":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for deploy.fail_fast: %v", val)
		}
		c.Deploy.FailFast = b
	case "log.level":
		c.Log.Level = strings.ToLower(val)
	case "log.format":
		c.Log.Format = strings.ToLower(val)
	case "log.file":
		c.Log.File = val
	case "metrics.textfile":
		c.Metrics.Textfile = val
	case "serve.addr":
		c.Serve.Addr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
