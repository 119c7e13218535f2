package core

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// FormatVersion is the only persisted grid layout this package reads and writes.
const FormatVersion int32 = 1

const (
	headerSize = 12
	recordSize = 12
	maxCells   = 1 << 28
)

var (
	// ErrUnsupportedVersion is returned by ReadFrom for any header version other than FormatVersion.
	ErrUnsupportedVersion = errors.New("unsupported grid format version")
	// ErrCorruptCell is returned by ReadFrom when a record holds an undefined direction.
	ErrCorruptCell = errors.New("corrupt grid cell")
)

// WriteTo encodes the grid as a little-endian header {version, width, height}
// followed by one fixed-size record per cell in row-major order:
// int32 direction, int32 depth, uint8 broken, uint8 insulated, two padding bytes.
func (g *Grid) WriteTo(w io.Writer) (int64, error) {
	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(FormatVersion))
	binary.LittleEndian.PutUint32(header[4:], uint32(int32(g.w)))
	binary.LittleEndian.PutUint32(header[8:], uint32(int32(g.h)))
	n, err := w.Write(header[:])
	total := int64(n)
	if err != nil {
		return total, fmt.Errorf("write header: %w", err)
	}

	var rec [recordSize]byte
	for i := range g.cells {
		encodeCell(rec[:], g.cells[i])
		n, err = w.Write(rec[:])
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write cell %d: %w", i, err)
		}
	}
	return total, nil
}

// ReadFrom replaces the grid with the contents of r. On any failure the grid keeps
// its previous contents.
func (g *Grid) ReadFrom(r io.Reader) (int64, error) {
	var header [headerSize]byte
	n, err := io.ReadFull(r, header[:4])
	total := int64(n)
	if err != nil {
		return total, fmt.Errorf("read version: %w", err)
	}
	version := int32(binary.LittleEndian.Uint32(header[0:]))
	if version != FormatVersion {
		return total, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	n, err = io.ReadFull(r, header[4:])
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("read dimensions: %w", err)
	}
	w := int(int32(binary.LittleEndian.Uint32(header[4:])))
	h := int(int32(binary.LittleEndian.Uint32(header[8:])))
	if w <= 0 || h <= 0 || w*h > maxCells {
		return total, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}

	cells := make([]Cell, w*h)
	br := bufio.NewReader(r)
	var rec [recordSize]byte
	for i := range cells {
		n, err = io.ReadFull(br, rec[:])
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("read cell %d: %w", i, err)
		}
		cells[i] = decodeCell(rec[:])
		if !cells[i].Direction.Valid() {
			return total, fmt.Errorf("%w: cell %d has direction %d", ErrCorruptCell, i, int32(cells[i].Direction))
		}
	}

	g.w, g.h, g.cells = w, h, cells
	return total, nil
}

// Save writes the grid to path. A failed save may leave a partially written file.
func (g *Grid) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if _, err := g.WriteTo(bw); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a grid previously written by Save.
func (g *Grid) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := g.ReadFrom(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// LoadGrid reads a grid file into a new Grid.
func LoadGrid(path string) (*Grid, error) {
	g := &Grid{}
	if err := g.Load(path); err != nil {
		return nil, err
	}
	return g, nil
}

func encodeCell(dst []byte, c Cell) {
	binary.LittleEndian.PutUint32(dst[0:], uint32(c.Direction))
	binary.LittleEndian.PutUint32(dst[4:], uint32(int32(c.Depth)))
	dst[8] = boolByte(c.Broken)
	dst[9] = boolByte(c.Insulated)
	dst[10] = 0
	dst[11] = 0
}

func decodeCell(src []byte) Cell {
	return Cell{
		Direction: Direction(int32(binary.LittleEndian.Uint32(src[0:]))),
		Depth:     int(int32(binary.LittleEndian.Uint32(src[4:]))),
		Broken:    src[8] != 0,
		Insulated: src[9] != 0,
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
