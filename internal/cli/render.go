package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iburimskiy/ambient-hero/internal/ambient"
	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/frame"
)

var errCanvasUnavailable = errors.New("hero canvas unavailable")

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render hero frames to numbered PNG files",
		Long: `Render animates the hero without a window. Every frame advances the
animation clock by one step; every --every'th frame is written to --out as
frame_NNNN.png. With a fixed --seed the output is reproducible.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			paths, err := renderFrames(ctx, a.settings, logger)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Rendered %d frames, wrote %d to %s", a.settings.Render.Frames, len(paths), a.settings.Render.Out))
			return nil
		},
	}

	cmd.Flags().Int("frames", config.DefaultFrames, "number of frames to animate")
	cmd.Flags().Int("every", config.DefaultFrameEvery, "write every Nth frame")
	cmd.Flags().String("out", config.DefaultRenderOut, "output directory")
	a.bindAs(cmd, "render.frames", "frames")
	a.bindAs(cmd, "render.every", "every")
	a.bindAs(cmd, "render.out", "out")
	return cmd
}

// renderFrames mounts a hero on an offscreen window, advances it
// s.Render.Frames times and writes every s.Render.Every'th frame. It returns
// the written paths in order.
func renderFrames(ctx context.Context, s config.Settings, logger *log.Logger) ([]string, error) {
	if err := os.MkdirAll(s.Render.Out, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	dpr := s.DPR
	if dpr == 0 {
		dpr = 1
	}
	win := frame.NewWindow(dpr)
	surface := ambient.NewSurface(float64(s.Width), float64(s.Height))
	defer surface.Close()

	hero := ambient.Mount(surface, win, ambient.WithSeed(s.Seed), ambient.WithLogger(logger))
	if !hero.Active() {
		return nil, errCanvasUnavailable
	}
	defer hero.Unmount()

	step := time.Second / time.Duration(s.TPS)
	start := time.Now()
	var paths []string
	for i := 1; i <= s.Render.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		win.Advance(start.Add(time.Duration(i) * step))
		if i%s.Render.Every != 0 {
			continue
		}

		path := filepath.Join(s.Render.Out, fmt.Sprintf("frame_%04d.png", i))
		if err := writeFrame(hero, path); err != nil {
			return paths, err
		}
		logger.Debug("frame written", "path", path, "t", hero.Time())
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFrame(hero *ambient.Renderer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := hero.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
