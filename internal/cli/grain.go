package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/grain"
)

func newGrainCmd(a *app) *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "grain",
		Short: "Write the grain texture and print its CSS background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			opts := []grain.Option{grain.WithSize(size), grain.WithLogger(logger)}
			if a.settings.Seed != 0 {
				opts = append(opts, grain.WithSeed(int64(a.settings.Seed)))
			}
			tex := grain.Build(opts...)
			if tex.Fallback {
				logger.Warn("grain texture unavailable, using flat fallback")
			}

			if err := writeTexture(tex, out); err != nil {
				return err
			}
			logger.Info("grain written", "path", out, "size", size)
			fmt.Fprintf(cmd.OutOrStdout(), "background-image: %s;\n", tex.Background)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "grain.png", "output file")
	cmd.Flags().IntVar(&size, "size", config.GrainSize, "tile edge length in pixels")
	return cmd
}

func writeTexture(tex grain.Texture, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := tex.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
