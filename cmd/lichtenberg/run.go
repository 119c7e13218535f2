package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lichtenberg/internal/config"
	"lichtenberg/internal/core"
	"lichtenberg/internal/lineage"
	"lichtenberg/internal/render"
	"lichtenberg/internal/sim"
	"lichtenberg/internal/store"
)

const (
	videoScale = 2
	videoFPS   = 30
)

var (
	runSets   []string
	runModel  string
	runPrefix string
	runDB     string

	runCmd = &cobra.Command{
		Use:   "run [config.yaml]",
		Short: "Run one simulation and write its grid, manifest and images",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
)

func init() {
	runCmd.Flags().StringArrayVar(&runSets, "set", nil, "override a model parameter or run.<field> (key=value, repeatable)")
	runCmd.Flags().StringVar(&runModel, "model", "", "growth model name")
	runCmd.Flags().StringVarP(&runPrefix, "out", "o", "", "output file prefix")
	runCmd.Flags().StringVar(&runDB, "db", "", "SQLite database to record the run in")
	rootCmd.AddCommand(runCmd)
}

// Manifest describes the files and outcome of one run.
type Manifest struct {
	RunID         string        `yaml:"run_id"`
	Grid          string        `yaml:"grid"`
	Rounds        int           `yaml:"rounds"`
	Reason        string        `yaml:"reason"`
	Broken        int           `yaml:"broken"`
	MaxDepth      int           `yaml:"max_depth"`
	Leaves        int           `yaml:"leaves"`
	MeanLeafDepth float64       `yaml:"mean_leaf_depth"`
	StoppedAt     *core.Point   `yaml:"stopped_at,omitempty"`
	Files         []string      `yaml:"files,omitempty"`
	Config        config.Config `yaml:"config"`
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if len(args) == 1 {
		var err error
		if cfg, err = config.Load(args[0]); err != nil {
			return err
		}
	}
	if runModel != "" {
		cfg.Model.Name = runModel
	}
	if runPrefix != "" {
		cfg.Output.Prefix = runPrefix
	}
	sets, err := parseSets(runSets)
	if err != nil {
		return err
	}
	if err := cfg.SetParams(sets); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, run, err := execute(ctx, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if runDB != "" {
		db, err := store.Open(runDB)
		if err != nil {
			return err
		}
		defer db.Close()
		if _, err := db.RecordRun(run); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d rounds (%s), %d cells broken, max depth %d\n",
		m.RunID, m.Rounds, m.Reason, m.Broken, m.MaxDepth)
	return nil
}

// execute runs cfg to completion or cancellation and writes every configured
// output next to cfg.Output.Prefix.
func execute(ctx context.Context, cfg config.Config, out io.Writer) (Manifest, store.Run, error) {
	s, err := cfg.NewSimulator()
	if err != nil {
		return Manifest{}, store.Run{}, err
	}
	g := s.Grid()
	prefix := cfg.Output.Prefix

	var video *render.VideoRecorder
	if cfg.Output.Video != "" {
		video, err = render.NewVideoRecorder(cfg.Output.Video, g.Width(), g.Height(), videoScale, videoFPS)
		if err != nil {
			return Manifest{}, store.Run{}, err
		}
		defer func() {
			if video != nil {
				video.Close()
			}
		}()
	}

	var growth render.GrowthLog
	var frameErr error
	every := cfg.Output.ProgressEvery
	onRound := func(round, maxRounds int, g *core.Grid) bool {
		broken := g.Count()
		growth.Record(round, broken)
		if every > 0 && round%every == 0 {
			fmt.Fprintf(out, "round %d/%d: %d broken\n", round, maxRounds, broken)
		}
		if video != nil && round%max(cfg.Output.VideoEvery, 1) == 0 {
			frameErr = video.AddFrame(g, round)
		}
		return frameErr != nil || ctx.Err() != nil
	}
	var stoppedAt *core.Point
	var onBreak sim.BreakFunc
	if stop := cfg.StopFunc(); stop != nil {
		onBreak = func(x, y int) bool {
			if stoppedAt == nil && stop(x, y) {
				stoppedAt = &core.Point{X: x, Y: y}
			}
			return stoppedAt != nil
		}
	}
	res := s.Run(cfg.MaxRounds, onBreak, onRound)
	if frameErr != nil {
		return Manifest{}, store.Run{}, fmt.Errorf("video frame: %w", frameErr)
	}
	switch {
	case stoppedAt != nil:
		fmt.Fprintf(out, "stop condition met at (%d,%d) after %d rounds\n", stoppedAt.X, stoppedAt.Y, res.Rounds)
	case res.Reason == sim.Cancelled:
		fmt.Fprintf(out, "interrupted after %d rounds, writing partial results\n", res.Rounds)
	}

	run := store.Summarize(res, g)
	run.ID = uuid.New()
	run.Model = cfg.Model.Name
	run.Params = cfg.Model.Params
	run.Seed = cfg.Seed

	m := Manifest{
		RunID:         run.ID.String(),
		Grid:          prefix + ".bin",
		Rounds:        run.Rounds,
		Reason:        run.Reason,
		Broken:        run.Broken,
		MaxDepth:      run.MaxDepth,
		Leaves:        run.Leaves,
		MeanLeafDepth: run.MeanLeafDepth,
		StoppedAt:     stoppedAt,
		Config:        cfg,
	}
	if err := g.Save(m.Grid); err != nil {
		return m, run, err
	}

	tree := lineage.New(g)
	for _, kind := range cfg.Output.Images {
		path := fmt.Sprintf("%s_%s.png", prefix, kind)
		if err := render.SavePNG(path, renderImage(kind, cfg.Output, g, tree)); err != nil {
			return m, run, err
		}
		m.Files = append(m.Files, path)
	}
	if video != nil {
		if err := video.Close(); err != nil {
			return m, run, err
		}
		video = nil
		m.Files = append(m.Files, cfg.Output.Video)
	}
	if cfg.Output.Chart != "" && len(growth.Rounds) >= 2 {
		if err := render.GrowthChart(cfg.Output.Chart, growth); err != nil {
			return m, run, err
		}
		m.Files = append(m.Files, cfg.Output.Chart)
	}
	if cfg.Output.Histogram != "" && run.Leaves > 0 {
		if err := render.LeafHistogram(cfg.Output.Histogram, tree.Leaves(), 20); err != nil {
			return m, run, err
		}
		m.Files = append(m.Files, cfg.Output.Histogram)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return m, run, err
	}
	return m, run, os.WriteFile(prefix+".yaml", data, 0o644)
}
