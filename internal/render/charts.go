package render

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"lichtenberg/internal/lineage"
)

// GrowthLog accumulates the broken-cell count at the start of every round.
type GrowthLog struct {
	Rounds []float64
	Broken []float64
}

// Record appends one sample.
func (l *GrowthLog) Record(round, broken int) {
	l.Rounds = append(l.Rounds, float64(round))
	l.Broken = append(l.Broken, float64(broken))
}

// GrowthChart plots broken cells per round as a PNG line chart.
func GrowthChart(path string, log GrowthLog) error {
	if len(log.Rounds) < 2 {
		return fmt.Errorf("growth chart needs at least two rounds, have %d", len(log.Rounds))
	}
	graph := chart.Chart{
		Width:  800,
		Height: 300,
		XAxis: chart.XAxis{
			Name:  "round",
			Style: chart.Style{FontSize: 10},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "broken cells",
			Style: chart.Style{FontSize: 10},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "broken",
				XValues: log.Rounds,
				YValues: log.Broken,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// LeafHistogram saves a histogram of leaf depths with the given bin count.
func LeafHistogram(path string, leaves []lineage.Leaf, bins int) error {
	if len(leaves) == 0 {
		return fmt.Errorf("leaf histogram: no leaves")
	}
	values := make(plotter.Values, len(leaves))
	for i, l := range leaves {
		values[i] = float64(l.Depth)
	}
	p := plot.New()
	p.Title.Text = "Leaf depth"
	p.X.Label.Text = "hops to root"
	p.Y.Label.Text = "leaves"
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
