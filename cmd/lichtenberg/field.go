package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"lichtenberg/internal/bolt"
	"lichtenberg/internal/field"
	"lichtenberg/internal/render"
)

const (
	modePotential = "potential"
	modeBlur      = "blur"
)

var (
	fieldPoints     []string
	fieldMode       string
	fieldSize       string
	fieldBackground string
	fieldMargin     int
	fieldRandomness float64
	fieldSeed       int64
	fieldGamma      float64
	fieldMultiply   float64
	fieldColor      string
	fieldStrokes    []string
	fieldSets       []string
	fieldDump       string
	fieldOut        string

	fieldCmd = &cobra.Command{
		Use:   "field",
		Short: "Draw a lightning bolt through control points onto an image",
		Long: `field grows a zig-zag discharge between each pair of control points and
lights it. The potential mode relaxes a field around the bolt with every
point held at its intensity; the blur mode stacks Gaussian-blurred strokes.`,
		Args: cobra.NoArgs,
		RunE: drawField,
	}
)

func init() {
	fs := fieldCmd.Flags()
	fs.StringArrayVar(&fieldPoints, "point", nil, "control point x,y[,intensity] (repeatable, at least two)")
	fs.StringVar(&fieldMode, "mode", modePotential, "shading: potential or blur")
	fs.StringVar(&fieldSize, "size", "256x256", "canvas size WxH when no background is given")
	fs.StringVar(&fieldBackground, "background", "", "image to draw onto")
	fs.IntVar(&fieldMargin, "margin", 50, "free space around the bolt for the potential field")
	fs.Float64Var(&fieldRandomness, "randomness", 50, "noise scale of each segment; larger is smoother")
	fs.Int64Var(&fieldSeed, "seed", 1, "segment noise seed")
	fs.Float64Var(&fieldGamma, "gamma", 1, "exponent applied to the potential")
	fs.Float64Var(&fieldMultiply, "multiply", 1, "brightness factor")
	fs.StringVar(&fieldColor, "color", "1,1,1", "per-channel exponents r,g,b; larger tints towards that channel")
	fs.StringArrayVar(&fieldStrokes, "stroke", nil, "blur stroke weight:radius (repeatable, default 0:1 1:4 2:8)")
	fs.StringArrayVar(&fieldSets, "set", nil, "solver setting: max_iterations, epsilon or relaxation (key=value)")
	fs.StringVar(&fieldDump, "field-out", "", "also write the normalised potential field as a gray PNG")
	fs.StringVarP(&fieldOut, "out", "o", "field.png", "output PNG")
	rootCmd.AddCommand(fieldCmd)
}

func drawField(cmd *cobra.Command, args []string) error {
	if fieldMode != modePotential && fieldMode != modeBlur {
		return fmt.Errorf("unknown mode %q, want %s or %s", fieldMode, modePotential, modeBlur)
	}
	cps := make([]bolt.ControlPoint, 0, len(fieldPoints))
	for _, s := range fieldPoints {
		cp, err := parseControlPoint(s)
		if err != nil {
			return err
		}
		cps = append(cps, cp)
	}
	exps, err := parseColor(fieldColor)
	if err != nil {
		return err
	}
	shade := bolt.Shade{Multiply: fieldMultiply, Color: exps}
	canvas, err := loadCanvas(fieldBackground, fieldSize)
	if err != nil {
		return err
	}

	pcfg := bolt.DefaultPathConfig()
	pcfg.Randomness = fieldRandomness
	pcfg.Seed = fieldSeed
	pts, levels, err := bolt.Trace(cps, pcfg)
	if err != nil {
		return err
	}

	switch fieldMode {
	case modePotential:
		if fieldGamma <= 0 {
			return fmt.Errorf("gamma %g must be positive", fieldGamma)
		}
		sets, err := parseSets(fieldSets)
		if err != nil {
			return err
		}
		cfg := bolt.PotentialConfig{Margin: fieldMargin, Gamma: fieldGamma, Solver: field.FromMap(sets)}
		f, _, err := bolt.Potential(canvas, pts, levels, cfg, shade)
		if err != nil {
			return err
		}
		if fieldDump != "" {
			f.Normalize()
			if err := render.SavePNG(fieldDump, render.Field(f)); err != nil {
				return err
			}
		}
	case modeBlur:
		strokes := bolt.DefaultStrokes()
		if len(fieldStrokes) > 0 {
			strokes = strokes[:0]
			for _, s := range fieldStrokes {
				st, err := parseStroke(s)
				if err != nil {
					return err
				}
				strokes = append(strokes, st)
			}
		}
		if err := bolt.Blur(canvas, pts, strokes, shade); err != nil {
			return err
		}
	}

	if err := render.SavePNG(fieldOut, canvas); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "drew %d-cell bolt (%s) into %s\n", len(pts), fieldMode, fieldOut)
	return nil
}

// parseControlPoint reads x,y[,intensity]. Intensity defaults to 1.
func parseControlPoint(s string) (bolt.ControlPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return bolt.ControlPoint{}, fmt.Errorf("invalid point %q, want x,y[,intensity]", s)
	}
	x, errX := strconv.Atoi(strings.TrimSpace(parts[0]))
	y, errY := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errX != nil || errY != nil {
		return bolt.ControlPoint{}, fmt.Errorf("invalid point %q, want x,y[,intensity]", s)
	}
	cp := bolt.ControlPoint{X: x, Y: y, Intensity: 1}
	if len(parts) == 3 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return cp, fmt.Errorf("invalid intensity in %q: %w", s, err)
		}
		cp.Intensity = v
	}
	return cp, nil
}

func parseColor(s string) ([3]float64, error) {
	var c [3]float64
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return c, fmt.Errorf("invalid color %q, want r,g,b", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 {
			return c, fmt.Errorf("invalid color %q: channel %d must be a positive number", s, i)
		}
		c[i] = v
	}
	return c, nil
}

func parseStroke(s string) (bolt.Stroke, error) {
	w, r, ok := strings.Cut(s, ":")
	weight, errW := strconv.Atoi(strings.TrimSpace(w))
	radius, errR := strconv.ParseFloat(strings.TrimSpace(r), 64)
	if !ok || errW != nil || errR != nil || weight < 0 || radius < 0 {
		return bolt.Stroke{}, fmt.Errorf("invalid stroke %q, want weight:radius", s)
	}
	return bolt.Stroke{Weight: weight, Radius: radius}, nil
}

// loadCanvas decodes the background image into an RGBA canvas, or returns an
// opaque black canvas of the given WxH size when there is none.
func loadCanvas(background, size string) (*image.RGBA, error) {
	if background == "" {
		w, h, ok := strings.Cut(size, "x")
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if !ok || errW != nil || errH != nil || width <= 0 || height <= 0 {
			return nil, fmt.Errorf("invalid size %q, want WxH", size)
		}
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
		return img, nil
	}
	f, err := os.Open(background)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", background, err)
	}
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)
	return img, nil
}
