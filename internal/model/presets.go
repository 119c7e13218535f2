package model

import "math"

// BlankField returns an unlocked padded field of zeros for a w x h grid.
func BlankField(w, h int) [][]FieldCell {
	f := make([][]FieldCell, h+2)
	for y := range f {
		f[y] = make([]FieldCell, w+2)
	}
	return f
}

// PlatesField models two parallel electrodes: the bottom padding row is held at
// PotentialSource, the top row and both side columns at PotentialSink.
func PlatesField(w, h int) [][]FieldCell {
	f := BlankField(w, h)
	for x := 0; x < w+2; x++ {
		f[0][x] = FieldCell{Potential: PotentialSink, Locked: true}
		f[h+1][x] = FieldCell{Potential: PotentialSource, Locked: true}
	}
	for y := 1; y <= h; y++ {
		f[y][0] = FieldCell{Potential: PotentialSink, Locked: true}
		f[y][w+1] = FieldCell{Potential: PotentialSink, Locked: true}
	}
	return f
}

// RingField locks a circle of cells centred on the grid at PotentialSource. A
// radius <= 0 picks the largest circle that fits inside the grid.
func RingField(w, h int, radius float64) [][]FieldCell {
	f := BlankField(w, h)
	cx, cy := float64(w)/2, float64(h)/2
	if radius <= 0 {
		radius = math.Min(cx, cy) - 1
	}
	samples := int(math.Ceil(2 * math.Pi * radius * 4))
	if samples < 8 {
		samples = 8
	}
	for i := 0; i < samples; i++ {
		t := 2 * math.Pi * float64(i) / float64(samples)
		x := int(math.Round(cx+radius*math.Cos(t))) + 1
		y := int(math.Round(cy+radius*math.Sin(t))) + 1
		if x < 1 || x > w || y < 1 || y > h {
			continue
		}
		f[y][x] = FieldCell{Potential: PotentialSource, Locked: true}
	}
	return f
}
