package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the generator's clean step",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		if err := gen.Clean(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleaned", gen.OutputDir())
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the content store into the output directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		if err := gen.Generate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Generated", gen.OutputDir())
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Replace the published directory with the generated output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		pub := newPublisher(cfg, gen, logger)
		if err := pub.Publish(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Published %s → %s\n", pub.Source, pub.Target)
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Tell the web server to reload",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rl, err := newReloader(cfg, logger)
		if err != nil {
			return err
		}
		if err := rl.Reload(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Reloaded web server")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd, generateCmd, publishCmd, reloadCmd)
}
