// Package grain builds the subtle noise texture laid over the page. Building
// it never fails: when the noise cannot be produced or encoded the texture
// degrades to a flat translucent fill.
package grain

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

// FallbackBackground is the background used when the noise texture is unavailable.
const FallbackBackground = "linear-gradient(to bottom, rgba(0,0,0,0.02), rgba(0,0,0,0.02))"

// Encoder serializes the generated image.
type Encoder func(w io.Writer, img image.Image) error

// Texture is the grain image together with the CSS background value that
// references it.
type Texture struct {
	Image      image.Image
	PNG        []byte // nil for the fallback
	Background string
	Fallback   bool
}

type options struct {
	size   int
	seed   int64
	encode Encoder
	logger *log.Logger
}

type Option func(*options)

// WithSize sets the edge length of the square tile in pixels.
func WithSize(n int) Option { return func(o *options) { o.size = n } }

// WithSeed sets the noise seed.
func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// WithEncoder replaces the PNG encoder.
func WithEncoder(e Encoder) Option {
	return func(o *options) {
		if e != nil {
			o.encode = e
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Build generates the grain tile.
func Build(opts ...Option) Texture {
	o := options{
		size:   config.GrainSize,
		seed:   256,
		encode: png.Encode,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}

	tex, err := build(o)
	if err != nil {
		o.logger.Debug("grain texture unavailable, using flat fill", "err", err)
		return Fallback(o.size)
	}
	return tex
}

func build(o options) (tex Texture, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generating noise: %v", r)
		}
	}()

	if o.size <= 0 {
		return Texture{}, fmt.Errorf("invalid tile size %d", o.size)
	}

	img := noise(o.size, o.seed)

	var buf bytes.Buffer
	if err := o.encode(&buf, img); err != nil {
		return Texture{}, fmt.Errorf("encoding noise: %w", err)
	}

	data := buf.Bytes()
	return Texture{
		Image:      img,
		PNG:        data,
		Background: `url("data:image/png;base64,` + base64.StdEncoding.EncodeToString(data) + `")`,
	}, nil
}

// noise renders fractal perlin noise at the tile's base frequency as grey
// values at half opacity.
func noise(size int, seed int64) *image.RGBA {
	p := perlin.NewPerlin(2, 2, config.GrainOctaves, seed)
	px := gg.NewPixmap(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := p.Noise2D(float64(x)*config.GrainFrequency, float64(y)*config.GrainFrequency)
			g := math.Max(0, math.Min(1, 0.5+0.5*v))
			px.SetPixel(x, y, gg.RGBA2(g, g, g, config.GrainOpacity))
		}
	}
	return px.ToImage()
}

// Fallback returns the flat translucent tile.
func Fallback(size int) Texture {
	if size <= 0 {
		size = 1
	}
	px := gg.NewPixmap(size, size)
	px.Clear(gg.RGBA2(0, 0, 0, config.GrainFallbackAlpha))
	return Texture{
		Image:      px.ToImage(),
		Background: FallbackBackground,
		Fallback:   true,
	}
}

// WritePNG writes the tile as PNG, encoding the fallback on demand.
func (t Texture) WritePNG(w io.Writer) error {
	if t.PNG != nil {
		_, err := w.Write(t.PNG)
		return err
	}
	if t.Image == nil {
		return fmt.Errorf("grain: empty texture")
	}
	return png.Encode(w, t.Image)
}
