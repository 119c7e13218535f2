// Package render turns grids, lineage trees and fields into images, videos and
// charts.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sort"

	"lichtenberg/internal/core"
	"lichtenberg/internal/field"
	"lichtenberg/internal/lineage"
)

// Mono draws broken cells white on black. Insulated cells stay black.
func Mono(g *core.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	FillBinaryRGBA(img.Pix, States(g, nil), color.White, color.Black)
	return img
}

// Insulation draws broken cells white and insulated cells red.
func Insulation(g *core.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width(), g.Height()))
	FillPaletteRGBA(img.Pix, States(g, nil), Palette)
	return img
}

// Gray shades broken cells by depth: (depth/maxDepth)^gamma * scale, where
// scale 1 maps the deepest cell to white. Unbroken and insulated cells are
// black.
func Gray(g *core.Grid, gamma, scale float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width(), g.Height()))
	maxDepth := float64(g.MaxDepth())
	if maxDepth == 0 {
		return img
	}
	for i, c := range g.Cells() {
		if !c.Broken || c.Insulated {
			continue
		}
		v := math.Pow(float64(c.Depth)/maxDepth, gamma) * scale
		img.Pix[i] = clampByte(v * 255)
	}
	return img
}

// Branches draws the n longest root-to-leaf chains of t in white. Cells whose
// depth metric is below minDepth are skipped, which trims the thin ends of
// each branch.
func Branches(t *lineage.Tree, n, minDepth int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, t.Width(), t.Height()))
	for _, leaf := range LongestLeaves(t, n) {
		for _, id := range t.Ancestors(leaf.ID) {
			node := t.At(id)
			if node.Depth < minDepth {
				continue
			}
			img.Pix[node.Y*img.Stride+node.X] = 0xff
		}
	}
	return img
}

// LongestLeaves returns up to n leaves ordered by decreasing depth. Ties keep
// row-major order.
func LongestLeaves(t *lineage.Tree, n int) []lineage.Leaf {
	leaves := t.Leaves()
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Depth > leaves[j].Depth })
	if n >= 0 && n < len(leaves) {
		leaves = leaves[:n]
	}
	return leaves
}

// Path draws the given cells white on a w x h canvas.
func Path(w, h int, pts []core.Point) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for _, p := range pts {
		if p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h {
			img.Pix[p.Y*img.Stride+p.X] = 0xff
		}
	}
	return img
}

// Field maps field values in [0,1] to gray levels.
func Field(f *field.Field) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width(), f.Height()))
	for i, v := range f.Values() {
		img.Pix[i] = clampByte(v * 255)
	}
	return img
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
