package ambient

import (
	"math"
	"sync"

	"github.com/gogpu/gg"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

// Canvas is a drawing surface the renderer can attach to.
type Canvas interface {
	// ClientSize is the rendered size of the surface's container in
	// logical pixels.
	ClientSize() (width, height float64)
	// Context2D returns the surface's drawing context, or nil when the
	// surface cannot be drawn on.
	Context2D() *gg.Context
}

// EffectiveDPR normalizes a device pixel ratio: unknown or non-positive
// ratios count as 1 and anything above 2 is capped at 2.
func EffectiveDPR(r float64) float64 {
	if r <= 0 || math.IsNaN(r) {
		return 1
	}
	return math.Min(r, config.MaxDevicePixelRatio)
}

// SurfaceSize returns the backing pixel size for a container of w×h logical
// pixels at device pixel ratio r. Each dimension is at least 1.
func SurfaceSize(w, h, r float64) (pw, ph int) {
	dpr := EffectiveDPR(r)
	return backing(w, dpr), backing(h, dpr)
}

func backing(v, dpr float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 1
	}
	px := math.Floor(v * dpr)
	if px < 1 {
		return 1
	}
	if px > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(px)
}

// Surface is an offscreen Canvas backed by a gg.Context. The host moves its
// client size around as the layout changes; the renderer owns the pixel size.
type Surface struct {
	mu          sync.Mutex
	width       float64
	height      float64
	dc          *gg.Context
	unavailable bool
}

// NewSurface returns a surface whose container measures width×height.
func NewSurface(width, height float64) *Surface {
	return &Surface{width: width, height: height}
}

// NewUnavailableSurface returns a surface with no drawing context, as when
// the platform refuses to hand one out.
func NewUnavailableSurface(width, height float64) *Surface {
	return &Surface{width: width, height: height, unavailable: true}
}

func (s *Surface) ClientSize() (float64, float64) {
	if s == nil {
		return 0, 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// SetClientSize records a new container size. It does not touch the pixel
// size; listeners of the owning environment's resize event do that.
func (s *Surface) SetClientSize(width, height float64) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *Surface) Context2D() *gg.Context {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return nil
	}
	if s.dc == nil {
		s.dc = gg.NewContext(1, 1)
	}
	return s.dc
}

// Close releases the drawing context. Later Context2D calls allocate a new one.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dc == nil {
		return nil
	}
	err := s.dc.Close()
	s.dc = nil
	return err
}
