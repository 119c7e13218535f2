//go:build ebiten

package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lichtenberg/internal/core"
	"lichtenberg/internal/render"
	"lichtenberg/internal/ui"
)

const hudWidth = 180

// Game adapts a Replay to the ebiten.Game interface.
type Game struct {
	replay *Replay
	timer  *core.FixedStep
	rate   int

	img    *ebiten.Image
	buf    []byte
	states []uint8

	hud     *ui.HUD
	overlay *ui.Overlay

	scale  int
	paused bool
}

// New constructs a Game revealing rate levels per second. title labels the
// side panel.
func New(replay *Replay, title string, scale, rate int) *Game {
	size := replay.Size()
	return &Game{
		replay:  replay,
		timer:   core.NewFixedStep(rate),
		rate:    rate,
		img:     ebiten.NewImage(size.W, size.H),
		buf:     make([]byte, 4*size.W*size.H),
		hud:     ui.NewHUD(title, hudWidth),
		overlay: ui.NewOverlay(replay.Tree(), scale),
		scale:   scale,
	}
}

// Update handles input and advances the replay.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.replay.Restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.replay.Advance(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.rate *= 2
		g.timer.SetRate(g.rate)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) && g.rate > 1 {
		g.rate /= 2
		g.timer.SetRate(g.rate)
	}

	g.overlay.Update()

	steps := g.timer.Due()
	if !g.paused {
		g.replay.Advance(steps)
	}
	return nil
}

// Draw renders the visible part of the discharge.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.states = g.replay.States(g.states)
	render.FillPaletteRGBA(g.buf, g.states, render.Palette)
	g.img.WritePixels(g.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.img, op)
	g.overlay.Draw(screen)

	size := g.replay.Size()
	g.hud.Draw(screen, size.W*g.scale, size.H*g.scale, g.status())
}

func (g *Game) status() []string {
	state := "playing"
	if g.paused {
		state = "paused"
	}
	lines := []string{
		fmt.Sprintf("level %d/%d", g.replay.Level(), g.replay.Levels()),
		fmt.Sprintf("%d levels/s, %s", g.rate, state),
	}
	if g.overlay.Visible() {
		lines = append(lines, fmt.Sprintf("%d longest branches", g.overlay.Branches()))
	}
	return append(lines, "", "space pause  n step", "r restart  q quit", "up/down speed", "b branches  [ ] count")
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.replay.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}
