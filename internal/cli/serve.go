package cli

import (
	"github.com/spf13/cobra"

	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/preview"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live preview of the hero over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return preview.New(a.settings, loggerFromContext(ctx)).Run(ctx)
		},
	}

	cmd.Flags().String("addr", config.DefaultServeAddr, "listen address")
	cmd.Flags().Int("fps", config.DefaultServeFPS, "animation frames per second")
	a.bindAs(cmd, "serve.addr", "addr")
	a.bindAs(cmd, "serve.fps", "fps")
	return cmd
}
