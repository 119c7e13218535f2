package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"lichtenberg/internal/config"
	"lichtenberg/internal/store"
)

// axis is one swept parameter and its candidate values.
type axis struct {
	key    string
	values []string
}

func parseAxes(args []string) ([]axis, error) {
	axes := make([]axis, 0, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" || v == "" {
			return nil, fmt.Errorf("invalid -param %q, want key=v1,v2,...", arg)
		}
		ax := axis{key: k}
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				ax.values = append(ax.values, s)
			}
		}
		axes = append(axes, ax)
	}
	return axes, nil
}

// job is one run of the sweep.
type job struct {
	set string // canonical key=value list identifying the parameter set
	cfg config.Config
}

// expand builds the cartesian product of axes times seeds runs over base.
// Seeds count up from base.Seed.
func expand(base config.Config, axes []axis, seeds int) ([]job, error) {
	if seeds < 1 {
		return nil, fmt.Errorf("need at least one seed, got %d", seeds)
	}
	sets := []map[string]string{{}}
	for _, ax := range axes {
		var next []map[string]string
		for _, set := range sets {
			for _, v := range ax.values {
				m := make(map[string]string, len(set)+1)
				for k, old := range set {
					m[k] = old
				}
				m[ax.key] = v
				next = append(next, m)
			}
		}
		sets = next
	}

	var jobs []job
	for _, set := range sets {
		for i := 0; i < seeds; i++ {
			cfg := base
			cfg.Model.Params = make(map[string]string, len(base.Model.Params))
			for k, v := range base.Model.Params {
				cfg.Model.Params[k] = v
			}
			if err := cfg.SetParams(set); err != nil {
				return nil, err
			}
			cfg.Seed = base.Seed + int64(i)
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			jobs = append(jobs, job{set: setKey(set), cfg: cfg})
		}
	}
	return jobs, nil
}

func setKey(set map[string]string) string {
	parts := make([]string, 0, len(set))
	for k, v := range set {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

// result pairs a finished run with the parameter set it belongs to.
type result struct {
	set string
	run store.Run
}

// sweep runs every job on a pool of workers. record is called once per
// finished run from a single goroutine. Cancelling ctx stops workers from
// starting new runs; runs in flight finish.
func sweep(ctx context.Context, jobs []job, workers int, record func(store.Run) error) ([]result, error) {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	results := make(chan result)
	done := make(chan struct{})
	var all []result
	var recordErr error
	go func() {
		defer close(done)
		for r := range results {
			if recordErr == nil {
				recordErr = record(r.run)
			}
			all = append(all, r)
		}
	}()

	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			run, err := runJob(j.cfg)
			if err != nil {
				return fmt.Errorf("%s seed %d: %w", j.set, j.cfg.Seed, err)
			}
			results <- result{set: j.set, run: run}
			return nil
		})
	}
	err := g.Wait()
	close(results)
	<-done
	if err != nil {
		return all, err
	}
	return all, recordErr
}

func runJob(cfg config.Config) (store.Run, error) {
	s, err := cfg.NewSimulator()
	if err != nil {
		return store.Run{}, err
	}
	res := s.Run(cfg.MaxRounds, cfg.StopFunc(), nil)
	run := store.Summarize(res, s.Grid())
	run.Model = cfg.Model.Name
	run.Params = cfg.Model.Params
	run.Seed = cfg.Seed
	return run, nil
}

// summary aggregates the runs of one parameter set.
type summary struct {
	set                       string
	runs                      int
	meanBroken, sdBroken      float64
	meanDepth, sdDepth        float64
	meanRounds, meanLeafDepth float64
}

func (s summary) String() string {
	set := s.set
	if set == "" {
		set = "(defaults)"
	}
	return fmt.Sprintf("%s: runs=%d broken=%.1f±%.1f maxDepth=%.1f±%.1f rounds=%.1f meanLeafDepth=%.2f",
		set, s.runs, s.meanBroken, s.sdBroken, s.meanDepth, s.sdDepth, s.meanRounds, s.meanLeafDepth)
}

// aggregate groups results by parameter set, ordered by decreasing mean
// maximum depth.
func aggregate(results []result) []summary {
	groups := map[string][]store.Run{}
	for _, r := range results {
		groups[r.set] = append(groups[r.set], r.run)
	}
	out := make([]summary, 0, len(groups))
	for set, runs := range groups {
		broken := make([]float64, len(runs))
		depth := make([]float64, len(runs))
		rounds := make([]float64, len(runs))
		leaf := make([]float64, len(runs))
		for i, r := range runs {
			broken[i] = float64(r.Broken)
			depth[i] = float64(r.MaxDepth)
			rounds[i] = float64(r.Rounds)
			leaf[i] = r.MeanLeafDepth
		}
		s := summary{set: set, runs: len(runs)}
		s.meanBroken, s.sdBroken = stat.MeanStdDev(broken, nil)
		s.meanDepth, s.sdDepth = stat.MeanStdDev(depth, nil)
		s.meanRounds = stat.Mean(rounds, nil)
		s.meanLeafDepth = stat.Mean(leaf, nil)
		if len(runs) == 1 {
			s.sdBroken, s.sdDepth = 0, 0
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].meanDepth != out[j].meanDepth {
			return out[i].meanDepth > out[j].meanDepth
		}
		return out[i].set < out[j].set
	})
	return out
}
