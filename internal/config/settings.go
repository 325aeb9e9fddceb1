package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. AMBIENT_SERVE_ADDR.
const EnvPrefix = "AMBIENT"

// Settings holds the runtime knobs of ambient-hero. The animation itself is
// governed by the constants in this package and is not configurable.
type Settings struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Title  string  `mapstructure:"title"`
	Seed   uint64  `mapstructure:"seed"` // 0 picks a random seed per mount
	DPR    float64 `mapstructure:"dpr"`  // 0 uses the monitor's scale factor
	TPS    int     `mapstructure:"tps"`

	Render RenderSettings `mapstructure:"render"`
	Serve  ServeSettings  `mapstructure:"serve"`
}

type RenderSettings struct {
	Frames int    `mapstructure:"frames"`
	Every  int    `mapstructure:"every"`
	Out    string `mapstructure:"out"`
}

type ServeSettings struct {
	Addr string `mapstructure:"addr"`
	FPS  int    `mapstructure:"fps"`
}

// SetDefaults registers the default value of every settings key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("width", WindowWidth)
	v.SetDefault("height", WindowHeight)
	v.SetDefault("title", WindowTitle)
	v.SetDefault("seed", 0)
	v.SetDefault("dpr", 0.0)
	v.SetDefault("tps", DefaultTPS)
	v.SetDefault("render.frames", DefaultFrames)
	v.SetDefault("render.every", DefaultFrameEvery)
	v.SetDefault("render.out", DefaultRenderOut)
	v.SetDefault("serve.addr", DefaultServeAddr)
	v.SetDefault("serve.fps", DefaultServeFPS)
}

// Load resolves settings from defaults, an optional config file, AMBIENT_*
// environment variables and any flags already bound to v, in viper's usual
// precedence order.
func Load(v *viper.Viper, path string) (Settings, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("unmarshalling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate reports the first setting that cannot be used.
func (s Settings) Validate() error {
	var errs []error
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", s.Width, s.Height))
	}
	if s.DPR < 0 {
		errs = append(errs, fmt.Errorf("dpr %v must not be negative", s.DPR))
	}
	if s.TPS <= 0 {
		errs = append(errs, fmt.Errorf("tps %d must be positive", s.TPS))
	}
	if s.Render.Frames < 0 {
		errs = append(errs, fmt.Errorf("render frames %d must not be negative", s.Render.Frames))
	}
	if s.Render.Every < 1 {
		errs = append(errs, fmt.Errorf("render every %d must be at least 1", s.Render.Every))
	}
	if s.Serve.FPS <= 0 {
		errs = append(errs, fmt.Errorf("serve fps %d must be positive", s.Serve.FPS))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return nil
}
