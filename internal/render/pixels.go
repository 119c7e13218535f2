package render

import (
	"image/color"

	"lichtenberg/internal/core"
)

// Cell states produced by States.
const (
	StateEmpty uint8 = iota
	StateBroken
	StateInsulated
)

// Palette maps cell states to colours: black background, white discharge and
// red insulation.
var Palette = []color.RGBA{
	StateEmpty:     {A: 0xff},
	StateBroken:    {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	StateInsulated: {R: 0xff, A: 0xff},
}

// States classifies every cell of g into dst, reallocating it when it is too
// short, and returns it.
func States(g *core.Grid, dst []uint8) []uint8 {
	cells := g.Cells()
	if cap(dst) < len(cells) {
		dst = make([]uint8, len(cells))
	}
	dst = dst[:len(cells)]
	for i, c := range cells {
		switch {
		case c.Insulated:
			dst[i] = StateInsulated
		case c.Broken:
			dst[i] = StateBroken
		default:
			dst[i] = StateEmpty
		}
	}
	return dst
}

// FillBinaryRGBA writes on for broken cells and off for everything else, so
// insulation is hidden.
func FillBinaryRGBA(buf []byte, states []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range states {
		base := i * 4
		if c == StateBroken {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// FillPaletteRGBA writes palette[state] for every cell, clamping states past
// the end of the palette. An empty palette clears buf to transparent black.
func FillPaletteRGBA(buf []byte, states []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(states)])
		return
	}
	last := len(palette) - 1
	for i, c := range states {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}
