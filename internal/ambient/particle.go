package ambient

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

// Particle is a point on a fixed elliptical orbit. Its parameters never
// change after creation; only the shared time moves it.
type Particle struct {
	Radius float64 // [40, 120)
	Angle  float64 // [0, 2π)
	Speed  float64 // [0.2, 0.8)
}

// NewParticles draws n particles from rng.
func NewParticles(rng *rand.Rand, n int) []Particle {
	if n <= 0 {
		return nil
	}
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			Radius: config.ParticleMinRadius + rng.Float64()*config.ParticleRadiusSpan,
			Angle:  rng.Float64() * 2 * math.Pi,
			Speed:  config.ParticleMinSpeed + rng.Float64()*config.ParticleSpeedSpan,
		}
	}
	return ps
}

// Position returns the particle's offset from the surface center at time t,
// in logical pixels.
func (p Particle) Position(t float64) (x, y float64) {
	phase := p.Angle + t*p.Speed
	return math.Cos(phase) * p.Radius * config.OrbitScaleX,
		math.Sin(phase) * p.Radius * config.OrbitScaleY
}

// DotRadius is the painted radius of the i-th particle.
func DotRadius(i int) float64 {
	return config.DotBaseRadius + float64(i%config.DotRadiusMod)
}

// DotAlpha is the painted opacity of the i-th particle.
func DotAlpha(i int) float64 {
	return config.DotBaseAlpha + float64(i%config.DotAlphaMod)*config.DotAlphaStep
}
