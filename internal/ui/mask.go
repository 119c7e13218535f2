// Package ui draws the replay viewer's side panel and branch overlay.
package ui

import (
	"image/color"

	"lichtenberg/internal/lineage"
	"lichtenberg/internal/render"
)

// BranchTint colours the highlighted branches.
var BranchTint = color.RGBA{R: 0xff, G: 0xd0, B: 0x40, A: 0xc0}

// BranchMask returns an RGBA buffer, one pixel per grid cell, that is tint on
// the n longest branches of t and transparent elsewhere.
func BranchMask(t *lineage.Tree, n int, tint color.RGBA) []byte {
	img := render.Branches(t, n, 0)
	buf := make([]byte, 4*len(img.Pix))
	for i, v := range img.Pix {
		if v == 0 {
			continue
		}
		buf[i*4+0] = tint.R
		buf[i*4+1] = tint.G
		buf[i*4+2] = tint.B
		buf[i*4+3] = tint.A
	}
	return buf
}
