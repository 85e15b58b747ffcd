package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errPublishedDiffers = errors.New("published directory differs from output")

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the published directory matches the generated output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		pub := newPublisher(cfg, gen, logger)
		diff, err := pub.Verify()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if diff.Empty() {
			fmt.Fprintf(out, "✓ %s matches %s\n", pub.Target, pub.Source)
			return nil
		}
		for _, p := range diff.Removed {
			fmt.Fprintf(out, "  - %s (missing from published)\n", p)
		}
		for _, p := range diff.Added {
			fmt.Fprintf(out, "  + %s (not in output)\n", p)
		}
		for _, p := range diff.Changed {
			fmt.Fprintf(out, "  ~ %s\n", p)
		}
		return errPublishedDiffers
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
