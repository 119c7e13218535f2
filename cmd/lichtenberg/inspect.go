package main

import (
	"fmt"
	"image"
	"strconv"

	"github.com/spf13/cobra"

	"lichtenberg/internal/config"
	"lichtenberg/internal/core"
	"lichtenberg/internal/lineage"
	"lichtenberg/internal/render"
)

var (
	renderKind     string
	renderGamma    float64
	renderScale    float64
	renderBranches int
	renderMinDepth int
	renderOut      string

	pathOut string

	leavesTop       int
	leavesHistogram string
	leavesBins      int

	renderCmd = &cobra.Command{
		Use:   "render <grid.bin>",
		Short: "Render a saved grid as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  renderGrid,
	}
	pathCmd = &cobra.Command{
		Use:   "path <grid.bin> <x1> <y1> <x2> <y2>",
		Short: "Print or draw the lineage path between two cells",
		Args:  cobra.ExactArgs(5),
		RunE:  tracePath,
	}
	leavesCmd = &cobra.Command{
		Use:   "leaves <grid.bin>",
		Short: "List branch tips ordered by depth",
		Args:  cobra.ExactArgs(1),
		RunE:  listLeaves,
	}
)

func init() {
	renderCmd.Flags().StringVar(&renderKind, "kind", config.ImageGray, "image kind: mono, gray, insulation or branches")
	renderCmd.Flags().Float64Var(&renderGamma, "gamma", 1, "gamma applied to normalised depth")
	renderCmd.Flags().Float64Var(&renderScale, "scale", 1, "brightness scale for gray images")
	renderCmd.Flags().IntVar(&renderBranches, "branches", 10, "number of longest branches to draw")
	renderCmd.Flags().IntVar(&renderMinDepth, "min-depth", 0, "skip branch cells with a smaller depth metric")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "render.png", "output PNG")

	pathCmd.Flags().StringVarP(&pathOut, "out", "o", "", "draw the path into this PNG instead of printing it")

	leavesCmd.Flags().IntVar(&leavesTop, "top", 10, "number of leaves to list (negative lists all)")
	leavesCmd.Flags().StringVar(&leavesHistogram, "histogram", "", "write a leaf depth histogram PNG")
	leavesCmd.Flags().IntVar(&leavesBins, "bins", 20, "histogram bins")

	rootCmd.AddCommand(renderCmd, pathCmd, leavesCmd)
}

func renderImage(kind string, out config.OutputConfig, g *core.Grid, t *lineage.Tree) image.Image {
	switch kind {
	case config.ImageGray:
		return render.Gray(g, out.Gamma, 1)
	case config.ImageInsulation:
		return render.Insulation(g)
	case config.ImageBranches:
		return render.Branches(t, out.Branches, 0)
	default:
		return render.Mono(g)
	}
}

func renderGrid(cmd *cobra.Command, args []string) error {
	g, err := core.LoadGrid(args[0])
	if err != nil {
		return err
	}
	var img image.Image
	switch renderKind {
	case config.ImageMono:
		img = render.Mono(g)
	case config.ImageGray:
		img = render.Gray(g, renderGamma, renderScale)
	case config.ImageInsulation:
		img = render.Insulation(g)
	case config.ImageBranches:
		img = render.Branches(lineage.New(g), renderBranches, renderMinDepth)
	default:
		return fmt.Errorf("unknown image kind %q", renderKind)
	}
	if err := render.SavePNG(renderOut, img); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", renderOut)
	return nil
}

func tracePath(cmd *cobra.Command, args []string) error {
	g, err := core.LoadGrid(args[0])
	if err != nil {
		return err
	}
	var c [4]int
	for i, a := range args[1:] {
		if c[i], err = strconv.Atoi(a); err != nil {
			return fmt.Errorf("coordinate %q: %w", a, err)
		}
	}
	for i := 0; i < 4; i += 2 {
		if !g.In(c[i], c[i+1]) {
			return fmt.Errorf("cell (%d,%d) outside %dx%d grid", c[i], c[i+1], g.Width(), g.Height())
		}
	}
	pts := lineage.New(g).Path(c[0], c[1], c[2], c[3])
	if len(pts) == 0 {
		return fmt.Errorf("no path between (%d,%d) and (%d,%d)", c[0], c[1], c[2], c[3])
	}
	if pathOut != "" {
		if err := render.SavePNG(pathOut, render.Path(g.Width(), g.Height(), pts)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cells to %s\n", len(pts), pathOut)
		return nil
	}
	for _, p := range pts {
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", p.X, p.Y)
	}
	return nil
}

func listLeaves(cmd *cobra.Command, args []string) error {
	g, err := core.LoadGrid(args[0])
	if err != nil {
		return err
	}
	t := lineage.New(g)
	for _, l := range render.LongestLeaves(t, leavesTop) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d %d %d\n", l.X, l.Y, l.Depth)
	}
	if leavesHistogram != "" {
		return render.LeafHistogram(leavesHistogram, t.Leaves(), leavesBins)
	}
	return nil
}
