package ambient

import (
	"errors"
	"math"

	"github.com/gogpu/gg"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

var (
	// Near-white toward the upper right, fading to a pale blue-grey.
	gradientInner = gg.RGBA2(1, 1, 1, 0.9)
	gradientOuter = gg.RGBA2(230.0/255, 236.0/255, 248.0/255, 0.4)

	dotColor = gg.RGB(120.0/255, 140.0/255, 170.0/255)
)

// Paint draws one frame of the ambient animation at time t into dc.
// The particle field is centered on the surface and scaled by dpr so that
// orbits keep their logical size on dense displays.
func Paint(dc *gg.Context, particles []Particle, t, dpr float64) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	var errs []error

	dc.Clear()

	bg := gg.NewRadialGradientBrush(w*0.5, h*0.6, config.GradientInnerRadius, math.Max(w, h)).
		SetFocus(w*0.7, h*0.3).
		AddColorStop(0, gradientInner).
		AddColorStop(1, gradientOuter)
	dc.SetFillBrush(bg)
	dc.DrawRectangle(0, 0, w, h)
	if err := dc.Fill(); err != nil {
		errs = append(errs, err)
	}

	dc.Push()
	dc.Translate(w/2, h/2)
	dc.Scale(dpr, dpr)
	for i, p := range particles {
		x, y := p.Position(t)
		dc.SetRGBA(dotColor.R, dotColor.G, dotColor.B, DotAlpha(i))
		dc.DrawCircle(x, y, DotRadius(i))
		if err := dc.Fill(); err != nil {
			errs = append(errs, err)
		}
	}
	dc.Pop()

	return errors.Join(errs...)
}
