// Package ambient implements the hero panel's ambient canvas: a fixed field
// of orbiting dots over a soft radial gradient, repainted every frame.
//
// A Renderer is confined to the callback dispatch of its Environment. Code
// running on other goroutines reads it through frame.Window.Do.
package ambient

import (
	"errors"
	"image"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/google/uuid"

	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/frame"
)

// ErrNotMounted is returned by operations that need a live drawing surface.
var ErrNotMounted = errors.New("ambient: renderer not mounted")

// Environment is everything the renderer needs from its host.
type Environment interface {
	frame.Scheduler
	frame.ResizeNotifier
	DevicePixelRatio() float64
}

type options struct {
	rng    *rand.Rand
	logger *log.Logger
}

// Option customizes Mount.
type Option func(*options)

// WithRand makes particle generation draw from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

// WithSeed makes particle generation reproducible. A zero seed keeps the
// default random source.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		if seed != 0 {
			o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
}

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Renderer is one mounted instance of the ambient canvas. It owns its
// particles and its clock; nothing is shared between mounts.
type Renderer struct {
	id     string
	logger *log.Logger

	canvas Canvas
	env    Environment
	dc     *gg.Context

	dpr       float64
	pw, ph    int
	particles []Particle
	ticks     uint64

	loop    *frame.Loop
	resize  frame.Handle
	mounted bool

	paintFailed bool
}

// Mount attaches a renderer to canvas and starts repainting it on every
// frame env delivers. When the canvas or its drawing context is missing the
// returned renderer is inert: nothing is scheduled and nothing is painted.
func Mount(canvas Canvas, env Environment, opts ...Option) *Renderer {
	o := options{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	r := &Renderer{
		id:     id,
		logger: o.logger.With("mount", id[:8]),
	}

	if canvas == nil || env == nil {
		r.logger.Debug("no surface or environment, ambient canvas disabled")
		return r
	}
	dc := acquire(canvas)
	if dc == nil {
		r.logger.Debug("drawing context unavailable, ambient canvas disabled")
		return r
	}

	r.canvas, r.env, r.dc = canvas, env, dc
	r.applySize()
	r.particles = NewParticles(o.rng, config.ParticleCount)
	r.loop = frame.StartLoop(env, r.tick)
	r.resize = env.AddResizeListener(r.onResize)
	r.mounted = true

	r.logger.Debug("mounted", "width", r.pw, "height", r.ph, "dpr", r.dpr, "particles", len(r.particles))
	return r
}

// acquire asks the canvas for its context. Any failure, including a panic
// inside the canvas implementation, yields nil.
func acquire(canvas Canvas) (dc *gg.Context) {
	defer func() {
		if recover() != nil {
			dc = nil
		}
	}()
	return canvas.Context2D()
}

// Unmount stops the frame loop and drops the resize listener before it
// returns. It is idempotent and safe on an inert renderer.
func (r *Renderer) Unmount() {
	if !r.mounted {
		return
	}
	r.mounted = false
	r.loop.Stop()
	r.env.RemoveResizeListener(r.resize)
	r.resize = 0
	r.logger.Debug("unmounted", "ticks", r.ticks)
}

func (r *Renderer) tick(time.Time) {
	if !r.mounted {
		return
	}
	if err := Paint(r.dc, r.particles, r.Time(), r.dpr); err != nil && !r.paintFailed {
		r.paintFailed = true
		r.logger.Warn("painting ambient frame", "err", err)
	}
	r.ticks++
}

func (r *Renderer) onResize() {
	if !r.mounted {
		return
	}
	r.applySize()
	r.logger.Debug("resized", "width", r.pw, "height", r.ph, "dpr", r.dpr)
}

func (r *Renderer) applySize() {
	r.dpr = EffectiveDPR(r.env.DevicePixelRatio())
	w, h := r.canvas.ClientSize()
	r.pw, r.ph = SurfaceSize(w, h, r.dpr)
	if err := r.dc.Resize(r.pw, r.ph); err != nil {
		r.logger.Warn("resizing ambient surface", "err", err)
	}
}

// ID identifies this mount in logs.
func (r *Renderer) ID() string { return r.id }

// Active reports whether the renderer is mounted and animating.
func (r *Renderer) Active() bool { return r.mounted }

// Ticks is the number of frames painted.
func (r *Renderer) Ticks() uint64 { return r.ticks }

// Time is the animation clock: Ticks × 0.005.
func (r *Renderer) Time() float64 { return float64(r.ticks) * config.TimeStep }

// DPR is the effective device pixel ratio last applied to the surface.
func (r *Renderer) DPR() float64 { return r.dpr }

// PixelSize is the backing size of the surface in device pixels.
func (r *Renderer) PixelSize() (int, int) { return r.pw, r.ph }

// Particles returns a copy of the particle field.
func (r *Renderer) Particles() []Particle {
	out := make([]Particle, len(r.particles))
	copy(out, r.particles)
	return out
}

// Image returns a copy of the last painted frame, or nil when not mounted.
func (r *Renderer) Image() image.Image {
	if !r.mounted {
		return nil
	}
	return r.dc.Image()
}

// EncodePNG writes the last painted frame as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	if !r.mounted {
		return ErrNotMounted
	}
	return r.dc.EncodePNG(w)
}
