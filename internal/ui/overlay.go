//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"lichtenberg/internal/lineage"
)

// Overlay highlights the longest branches of the finished discharge on top of
// the replay. B toggles it; [ and ] change how many branches are shown.
type Overlay struct {
	tree     *lineage.Tree
	scale    int
	branches int
	show     bool
	dirty    bool
	img      *ebiten.Image
}

// NewOverlay constructs an overlay for t drawn at the given pixel scale.
func NewOverlay(t *lineage.Tree, scale int) *Overlay {
	return &Overlay{tree: t, scale: scale, branches: 5, dirty: true}
}

// Branches returns how many branches are highlighted.
func (o *Overlay) Branches() int { return o.branches }

// Visible reports whether the overlay is drawn.
func (o *Overlay) Visible() bool { return o.show }

// Update handles overlay key bindings.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		o.show = !o.show
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRightBracket) {
		o.branches++
		o.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeftBracket) && o.branches > 1 {
		o.branches--
		o.dirty = true
	}
}

// Draw renders the highlighted branches when visible.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.show {
		return
	}
	if o.img == nil {
		o.img = ebiten.NewImage(o.tree.Width(), o.tree.Height())
	}
	if o.dirty {
		o.img.WritePixels(BranchMask(o.tree, o.branches, BranchTint))
		o.dirty = false
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.img, op)
}
