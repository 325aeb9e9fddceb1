package game

import (
	"math"

	"github.com/iburimskiy/ambient-hero/internal/config"
)

// rect is an axis-aligned box in logical pixels.
type rect struct {
	X, Y, W, H float64
}

func (r rect) scaled(s float64) rect {
	return rect{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

// heroPanel places the ambient canvas in the right half of the window.
func heroPanel(w, h float64) rect {
	x := w / 2
	pw := math.Max(1, w-x-config.PanelMargin)
	ph := math.Max(1, math.Min(h-config.PanelTop-config.PanelMargin, config.PanelMaxHeight))
	return rect{X: x, Y: config.PanelTop, W: pw, H: ph}
}

// glassPanels are the decorative cards floating over the hero panel: a wide
// one centered near the top, a square one on the right and a low one on the
// bottom left.
func glassPanels(p rect) []rect {
	return []rect{
		{X: p.X + p.W/2 - 128, Y: p.Y + 24, W: 256, H: 160},
		{X: p.X + p.W - 24 - 112, Y: p.Y + 96, W: 112, H: 112},
		{X: p.X + 24, Y: p.Y + p.H - 40 - 112, W: 176, H: 112},
	}
}

// workCards lays out the "selected work" row under the headline column.
func workCards(w, h float64) []rect {
	const gap = 24.0
	col := math.Max(3, w/2-2*config.PanelMargin)
	cw := (col - 2*gap) / 3
	ch := math.Min(160, math.Max(1, h/4))
	y := h - config.PanelMargin - ch

	cards := make([]rect, 3)
	for i := range cards {
		cards[i] = rect{X: config.PanelMargin + float64(i)*(cw+gap), Y: y, W: cw, H: ch}
	}
	return cards
}
