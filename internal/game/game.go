// Package game hosts the landing page in an ebiten window. The window is the
// frame.Window environment of the hero's ambient renderer: every Update is
// one display frame and every layout change is one resize event.
package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/ambient-hero/internal/ambient"
	"github.com/iburimskiy/ambient-hero/internal/config"
	"github.com/iburimskiy/ambient-hero/internal/frame"
	"github.com/iburimskiy/ambient-hero/internal/grain"
)

type Game struct {
	settings config.Settings
	logger   *log.Logger
	done     <-chan struct{}

	// hero
	win       *frame.Window
	surface   *ambient.Surface
	hero      *ambient.Renderer
	canvasImg *ebiten.Image

	// decoration
	glowBlue   *ebiten.Image
	glowIndigo *ebiten.Image
	grainImg   *ebiten.Image

	// layout, in logical pixels
	outsideW, outsideH int
	scale              float64
	layoutDirty        bool

	// stats
	stats     *frameTap
	showStats bool
	started   time.Time

	// snapshot
	selectSavePath func() (string, error)

	lastErr error
}

// New builds the page for s. The hero is mounted immediately and starts
// animating with the first Update.
func New(ctx context.Context, s config.Settings, logger *log.Logger) *Game {
	g := &Game{
		settings:       s,
		logger:         logger,
		done:           ctx.Done(),
		win:            frame.NewWindow(1),
		stats:          newFrameTap(config.FrameRingSize),
		started:        time.Now(),
		selectSavePath: selectSavePathDialog,
		scale:          1,
	}

	p := heroPanel(float64(s.Width), float64(s.Height))
	g.surface = ambient.NewSurface(p.W, p.H)
	g.mountHero()

	g.glowBlue = ebiten.NewImageFromImage(glowImage(gg.RGBA2(164.0/255, 202.0/255, 1, 0.6)))
	g.glowIndigo = ebiten.NewImageFromImage(glowImage(gg.RGBA2(199.0/255, 210.0/255, 254.0/255, 0.5)))

	tex := grain.Build(grain.WithLogger(logger))
	g.grainImg = ebiten.NewImageFromImage(tex.Image)

	return g
}

func (g *Game) mountHero() {
	g.hero = ambient.Mount(g.surface, g.win,
		ambient.WithSeed(g.settings.Seed),
		ambient.WithLogger(g.logger),
	)
	if !g.hero.Active() {
		g.logger.Warn("hero canvas unavailable, continuing without animation")
	}
}

func (g *Game) Update() error {
	select {
	case <-g.done:
		return ebiten.Termination
	default:
	}

	now := time.Now()
	g.stats.record(now)

	if g.layoutDirty {
		g.layoutDirty = false
		p := heroPanel(float64(g.outsideW), float64(g.outsideH))
		g.surface.SetClientSize(p.W, p.H)
		g.win.SetDevicePixelRatio(g.scale)
		g.win.Resize()
	}

	g.win.Advance(now)

	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.saveSnapshot(); err != nil {
			g.lastErr = err
			g.logger.Error("saving snapshot", "err", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.toggleHero()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.showStats = !g.showStats
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.White)

	w, h := float64(g.outsideW), float64(g.outsideH)
	if w == 0 || h == 0 {
		w, h = float64(g.settings.Width), float64(g.settings.Height)
	}

	g.drawGlows(screen, w, h)
	g.drawHero(screen, w, h)
	g.drawGlassPanels(screen, heroPanel(w, h))
	g.drawWork(screen, w, h)
	g.drawGrain(screen)
	g.drawStatus(screen)
}

// Layout records the window size; the resize itself is delivered on the
// next Update so listeners run on the same goroutine as frame callbacks.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := g.deviceScale()
	if outsideWidth != g.outsideW || outsideHeight != g.outsideH || scale != g.scale {
		g.outsideW, g.outsideH, g.scale = outsideWidth, outsideHeight, scale
		g.layoutDirty = true
	}
	return int(float64(outsideWidth) * scale), int(float64(outsideHeight) * scale)
}

func (g *Game) deviceScale() float64 {
	if g.settings.DPR > 0 {
		return g.settings.DPR
	}
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// Close detaches the hero and releases its surface.
func (g *Game) Close() {
	g.hero.Unmount()
	if err := g.surface.Close(); err != nil {
		g.logger.Debug("closing hero surface", "err", err)
	}
}

func (g *Game) toggleHero() {
	if g.hero.Active() {
		g.hero.Unmount()
		return
	}
	g.mountHero()
}

func (g *Game) drawGlows(screen *ebiten.Image, w, h float64) {
	s := g.scale
	drawStretched(screen, g.glowBlue, rect{X: 0, Y: -160, W: w / 2, H: h * 0.6}.scaled(s))
	drawStretched(screen, g.glowIndigo, rect{X: w / 2, Y: h*0.4 + 160, W: w / 2, H: h * 0.6}.scaled(s))
}

func (g *Game) drawHero(screen *ebiten.Image, w, h float64) {
	p := heroPanel(w, h).scaled(g.scale)

	// Panel backing: translucent white with a soft border, like the canvas element.
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), nrgba(255, 255, 255, 0.7), true)

	if img, ok := g.hero.Image().(*image.RGBA); ok {
		b := img.Bounds()
		if g.canvasImg == nil || g.canvasImg.Bounds().Size() != b.Size() {
			if g.canvasImg != nil {
				g.canvasImg.Deallocate()
			}
			g.canvasImg = ebiten.NewImage(b.Dx(), b.Dy())
		}
		g.canvasImg.WritePixels(img.Pix)
		drawStretched(screen, g.canvasImg, p)
	}

	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.W), float32(p.H), float32(g.scale), nrgba(255, 255, 255, 0.6), true)
}

func (g *Game) drawGlassPanels(screen *ebiten.Image, panel rect) {
	for _, r := range glassPanels(panel) {
		g.drawGlass(screen, r.scaled(g.scale))
	}
}

func (g *Game) drawWork(screen *ebiten.Image, w, h float64) {
	cards := workCards(w, h)
	if len(cards) > 0 {
		ebitenutil.DebugPrintAt(screen, "Selected Work", int(cards[0].X*g.scale), int((cards[0].Y-20)*g.scale))
	}
	for _, r := range cards {
		g.drawGlass(screen, r.scaled(g.scale))
	}
}

func (g *Game) drawGlass(screen *ebiten.Image, r rect) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y+10*g.scale), float32(r.W), float32(r.H), nrgba(0, 0, 0, 0.04), true)
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), nrgba(255, 255, 255, 0.4), true)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), float32(g.scale), nrgba(255, 255, 255, 0.5), true)
}

func (g *Game) drawGrain(screen *ebiten.Image) {
	tw, th := g.grainImg.Bounds().Dx(), g.grainImg.Bounds().Dy()
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	for y := 0; y < sh; y += th {
		for x := 0; x < sw; x += tw {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(x), float64(y))
			op.ColorScale.ScaleAlpha(config.GrainOverlayAlpha)
			screen.DrawImage(g.grainImg, op)
		}
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	// Badge dot, then the headline block in the left column.
	vector.DrawFilledCircle(screen, float32((config.PanelMargin+4)*g.scale), float32((config.PanelTop+6)*g.scale), float32(3*g.scale), nrgba(52, 211, 153, 1), true)
	ebitenutil.DebugPrintAt(screen, "Available for new projects", int((config.PanelMargin+14)*g.scale), int(config.PanelTop*g.scale))
	ebitenutil.DebugPrintAt(screen, "Minimal, cinematic interfaces for modern software.", int(config.PanelMargin*g.scale), int((config.PanelTop+32)*g.scale))
	ebitenutil.DebugPrintAt(screen, "hello@example.com", int(config.PanelMargin*g.scale), int((config.PanelTop+56)*g.scale))

	status := "Hero running " + formatDuration(time.Since(g.started))
	if !g.hero.Active() {
		status = "Hero unmounted - M to mount"
	}
	if g.showStats {
		pw, ph := g.hero.PixelSize()
		status += fmt.Sprintf(" | %.1f fps | t=%.3f | %dx%d @%.1fx", g.stats.fps(), g.hero.Time(), pw, ph, g.hero.DPR())
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

// drawStretched draws img so it exactly covers dst (device pixels).
func drawStretched(screen, img *ebiten.Image, dst rect) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(dst.W/float64(b.Dx()), dst.H/float64(b.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(img, op)
}

// glowImage renders a soft radial blob fading to transparent at 60% of its radius.
func glowImage(c gg.RGBA) image.Image {
	const size = 256
	dc := gg.NewContext(size, size)
	defer func() { _ = dc.Close() }()

	faded := c
	faded.A = 0
	dc.SetFillBrush(gg.NewRadialGradientBrush(size/2, size/2, 0, size/2).
		AddColorStop(0, c).
		AddColorStop(0.6, faded).
		AddColorStop(1, faded))
	dc.DrawRectangle(0, 0, size, size)
	_ = dc.Fill()
	return dc.Image()
}

func (g *Game) saveSnapshot() error {
	if !g.hero.Active() {
		return errors.New("hero canvas is unmounted")
	}
	filename, err := g.selectSavePath()
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := g.hero.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	g.logger.Info("saved snapshot", "path", filename)
	return nil
}

func selectSavePathDialog() (string, error) {
	return zenity.SelectFileSave(
		zenity.Title("Save Hero Snapshot"),
		zenity.Filename("hero.png"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
func Run(ctx context.Context, s config.Settings, logger *log.Logger) error {
	ebiten.SetWindowSize(s.Width, s.Height)
	ebiten.SetWindowTitle(s.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(s.TPS)

	g := New(ctx, s, logger)
	defer g.Close()

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	return ctx.Err()
}
