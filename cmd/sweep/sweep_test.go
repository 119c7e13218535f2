package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lichtenberg/internal/config"
	"lichtenberg/internal/store"
)

func baseConfig() config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height = 12, 12
	cfg.Seeds = []config.Point{{X: 6, Y: 0}}
	cfg.Seed = 10
	return cfg
}

func TestParseAxes(t *testing.T) {
	axes, err := parseAxes([]string{"octaves=1, 3", "scale=5"})
	require.NoError(t, err)
	want := []axis{{key: "octaves", values: []string{"1", "3"}}, {key: "scale", values: []string{"5"}}}
	if diff := cmp.Diff(want, axes, cmp.AllowUnexported(axis{})); diff != "" {
		t.Fatalf("axes mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"octaves", "=1", "octaves="} {
		_, err := parseAxes([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestExpand(t *testing.T) {
	axes := []axis{{key: "octaves", values: []string{"1", "2"}}, {key: "scale", values: []string{"4", "8", "16"}}}
	jobs, err := expand(baseConfig(), axes, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 12)

	assert.Equal(t, "octaves=1 scale=4", jobs[0].set)
	assert.Equal(t, int64(10), jobs[0].cfg.Seed)
	assert.Equal(t, int64(11), jobs[1].cfg.Seed)
	assert.Equal(t, "16", jobs[5].cfg.Model.Params["scale"])
	assert.Equal(t, "2", jobs[11].cfg.Model.Params["octaves"])
	assert.Nil(t, baseConfig().Model.Params, "base params untouched")

	_, err = expand(baseConfig(), nil, 0)
	assert.Error(t, err)
	_, err = expand(baseConfig(), []axis{{key: "run.width", values: []string{"0"}}}, 1)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestSweepRecordsEveryRun(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	defer db.Close()

	jobs, err := expand(baseConfig(), []axis{{key: "octaves", values: []string{"1", "4"}}}, 3)
	require.NoError(t, err)

	results, err := sweep(context.Background(), jobs, 3, func(r store.Run) error {
		r.SweepID = "s1"
		_, err := db.RecordRun(r)
		return err
	})
	require.NoError(t, err)
	require.Len(t, results, 6)

	stored, err := db.Runs("s1")
	require.NoError(t, err)
	assert.Len(t, stored, 6)

	// Runs are deterministic per seed regardless of scheduling.
	again, err := sweep(context.Background(), jobs[:1], 1, func(store.Run) error { return nil })
	require.NoError(t, err)
	for _, r := range results {
		if r.run.Seed == jobs[0].cfg.Seed && r.set == jobs[0].set {
			assert.Equal(t, r.run.Broken, again[0].run.Broken)
			assert.Equal(t, r.run.MaxDepth, again[0].run.MaxDepth)
		}
	}

	sums := aggregate(results)
	require.Len(t, sums, 2)
	for _, s := range sums {
		assert.Equal(t, 3, s.runs)
		assert.Greater(t, s.meanBroken, 0.0)
	}
	assert.GreaterOrEqual(t, sums[0].meanDepth, sums[1].meanDepth)
}

func TestSweepHonoursStopCondition(t *testing.T) {
	base := baseConfig()
	base.Model.Name = "uniform"
	jobs, err := expand(base, []axis{{key: "run.stop_row", values: []string{"4", "11"}}}, 2)
	require.NoError(t, err)

	results, err := sweep(context.Background(), jobs, 2, func(store.Run) error { return nil })
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, "cancelled", r.run.Reason, r.set)
		assert.Less(t, r.run.Broken, base.Width*base.Height, r.set)
	}
}

func TestSweepStopsOnRecordError(t *testing.T) {
	jobs, err := expand(baseConfig(), nil, 2)
	require.NoError(t, err)
	boom := errors.New("disk full")
	_, err = sweep(context.Background(), jobs, 2, func(store.Run) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestAggregateSingleRun(t *testing.T) {
	sums := aggregate([]result{{set: "", run: store.Run{Broken: 5, MaxDepth: 3, Rounds: 2}}})
	require.Len(t, sums, 1)
	assert.Equal(t, 0.0, sums[0].sdBroken)
	assert.Contains(t, sums[0].String(), "(defaults)")
}
