package ambient

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestNewParticlesRanges(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		ps := NewParticles(rand.New(rand.NewPCG(seed, seed)), 60)
		if len(ps) != 60 {
			t.Fatalf("seed %d: len = %d, want 60", seed, len(ps))
		}
		for i, p := range ps {
			if p.Radius < 40 || p.Radius >= 120 {
				t.Errorf("seed %d particle %d: Radius %v out of [40,120)", seed, i, p.Radius)
			}
			if p.Angle < 0 || p.Angle >= 2*math.Pi {
				t.Errorf("seed %d particle %d: Angle %v out of [0,2π)", seed, i, p.Angle)
			}
			if p.Speed < 0.2 || p.Speed >= 0.8 {
				t.Errorf("seed %d particle %d: Speed %v out of [0.2,0.8)", seed, i, p.Speed)
			}
		}
	}
}

func TestNewParticlesNonPositive(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	if ps := NewParticles(rng, 0); ps != nil {
		t.Errorf("NewParticles(0) = %v, want nil", ps)
	}
	if ps := NewParticles(rng, -3); ps != nil {
		t.Errorf("NewParticles(-3) = %v, want nil", ps)
	}
}

func TestParticlePosition(t *testing.T) {
	p := Particle{Radius: 100, Angle: 0, Speed: 0.5}

	tests := []struct {
		name  string
		t     float64
		wantX float64
		wantY float64
	}{
		{"origin phase", 0, 300, 0},
		{"quarter turn", math.Pi, 0, 120},
		{"half turn", 2 * math.Pi, -300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := p.Position(tt.t)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("Position(%v) = (%v, %v), want (%v, %v)", tt.t, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestParticleOrbitIsElliptical(t *testing.T) {
	p := Particle{Radius: 80, Angle: 1.3, Speed: 0.7}
	for step := range 200 {
		x, y := p.Position(float64(step) * 0.05)
		// (x/3r)^2 + (y/1.2r)^2 == 1 on the orbit
		got := math.Pow(x/(3*p.Radius), 2) + math.Pow(y/(1.2*p.Radius), 2)
		if math.Abs(got-1) > 1e-9 {
			t.Fatalf("step %d: point (%v, %v) off the orbit (%v)", step, x, y, got)
		}
	}
}

func TestDotStyleByIndex(t *testing.T) {
	tests := []struct {
		i         int
		wantR     float64
		wantAlpha float64
	}{
		{0, 2, 0.06},
		{1, 3, 0.07},
		{4, 6, 0.10},
		{5, 7, 0.06},
		{6, 8, 0.07},
		{7, 2, 0.08},
		{34, 8, 0.10},
		{35, 2, 0.06},
		{59, 5, 0.10},
	}

	for _, tt := range tests {
		if got := DotRadius(tt.i); got != tt.wantR {
			t.Errorf("DotRadius(%d) = %v, want %v", tt.i, got, tt.wantR)
		}
		if got := DotAlpha(tt.i); math.Abs(got-tt.wantAlpha) > 1e-12 {
			t.Errorf("DotAlpha(%d) = %v, want %v", tt.i, got, tt.wantAlpha)
		}
	}
}
