package core

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Point is a cell coordinate.
type Point struct {
	X, Y int
}

// Direction records which side of a broken cell its growth parent lies on.
type Direction int32

const (
	// DirNone marks a seeded root, an insulated cell, or an unbroken cell.
	DirNone Direction = iota
	// DirUp means the parent is at y-1.
	DirUp
	// DirLeft means the parent is at x-1.
	DirLeft
	// DirDown means the parent is at y+1.
	DirDown
	// DirRight means the parent is at x+1.
	DirRight
)

// String returns a short lowercase name.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirLeft:
		return "left"
	case DirDown:
		return "down"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Offset returns the step from a cell to the neighbor on side d.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirDown:
		return 0, 1
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Opposite returns the direction pointing back the other way.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirLeft:
		return DirRight
	case DirDown:
		return DirUp
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Valid reports whether d is one of the defined directions.
func (d Direction) Valid() bool { return d >= DirNone && d <= DirRight }

// Neighbors is the order in which the four sides of a cell are visited.
var Neighbors = [4]Direction{DirLeft, DirRight, DirUp, DirDown}
