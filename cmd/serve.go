package cmd

import (
	"github.com/KaramelBytes/blogctl/internal/preview"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generated output locally for preview",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cfg, logger)
		if err != nil {
			return err
		}
		addr := cfg.Serve.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return preview.New(gen.OutputDir(), addr, logger).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides serve.addr)")
}
