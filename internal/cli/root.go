// Package cli implements the ambient-hero command-line interface.
//
// With no subcommand the landing page opens in a window. The other commands
// render the hero headlessly:
//   - render: write numbered PNG frames of a deterministic animation
//   - grain: write the noise texture and print its CSS background value
//   - serve: animate the hero behind an HTTP preview page
//
// Settings come from defaults, an optional config file (--config),
// AMBIENT_* environment variables and flags, in increasing precedence.
// All commands support --verbose (-v) for debug logging; the logger is
// passed to commands through context.Context.
package cli

import (
	"context"
	"fmt"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/game"
)

var version = "dev"

// SetVersion sets the string printed by --version.
func SetVersion(v string) {
	version = v
}

// app is the state shared by the root command and its subcommands.
type app struct {
	v        *viper.Viper
	cfgFile  string
	verbose  bool
	settings config.Settings
}

// Execute runs the CLI until the command finishes or ctx is cancelled.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "ambient-hero",
		Short:         "Ambient particle hero for a personal landing page",
		Long:          `ambient-hero draws a slowly drifting cloud of particles over a soft radial gradient, either in a desktop window, as PNG frames or behind a local HTTP preview.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if a.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			if a.verbose {
				bridgeDrawLogger(logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), logger))

			s, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.settings = s
			logger.Debug("settings loaded", "width", s.Width, "height", s.Height, "seed", s.Seed, "dpr", s.DPR)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWindow(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	flags.Uint64("seed", 0, "particle seed (0 picks a random one)")
	flags.Int("width", config.WindowWidth, "width in logical pixels")
	flags.Int("height", config.WindowHeight, "height in logical pixels")
	flags.Float64("dpr", 0, "device pixel ratio override (0 uses the display's)")
	a.bind(root, "seed", "width", "height", "dpr")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newGrainCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// bind ties each persistent or local flag of cmd to the settings key of the
// same name.
func (a *app) bind(cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		a.bindAs(cmd, key, key)
	}
}

func (a *app) bindAs(cmd *cobra.Command, key, flag string) {
	f := lookupFlag(cmd, flag)
	if f == nil {
		panic(fmt.Sprintf("cli: no flag %q on %s", flag, cmd.Name()))
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("cli: binding %q: %v", key, err))
	}
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.PersistentFlags().Lookup(name); f != nil {
		return f
	}
	return cmd.Flags().Lookup(name)
}

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the landing page in a window (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWindow(cmd)
		},
	}
}

func (a *app) runWindow(cmd *cobra.Command) error {
	ctx := cmd.Context()
	return game.Run(ctx, a.settings, loggerFromContext(ctx))
}
