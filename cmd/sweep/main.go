// Command sweep runs a model over a grid of parameter values and seeds in
// parallel and records every run in a SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"lichtenberg/internal/config"
	"lichtenberg/internal/store"
)

// kvList collects repeated key=v1,v2,... flags.
type kvList []string

func (l *kvList) String() string     { return strings.Join(*l, " ") }
func (l *kvList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	cfgPath := flag.String("config", "", "base run configuration (YAML)")
	modelName := flag.String("model", "", "growth model (overrides the config)")
	seeds := flag.Int("seeds", 4, "seeds per parameter set")
	workers := flag.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	dbPath := flag.String("db", "sweep.db", "SQLite database receiving the runs")
	var params kvList
	flag.Var(&params, "param", "parameter values to sweep, key=v1,v2,... (repeatable)")
	flag.Parse()

	base := config.FromEnv()
	if *cfgPath != "" {
		var err error
		if base, err = config.Load(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	if *modelName != "" {
		base.Model.Name = *modelName
	}
	axes, err := parseAxes(params)
	if err != nil {
		log.Fatal(err)
	}
	jobs, err := expand(base, axes, *seeds)
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweepID := uuid.NewString()
	fmt.Printf("Sweep %s: %d runs of %s (%d workers)\n", sweepID, len(jobs), base.Model.Name, *workers)

	start := time.Now()
	runs, err := sweep(ctx, jobs, *workers, func(r store.Run) error {
		r.SweepID = sweepID
		_, err := db.RecordRun(r)
		return err
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\nResults by parameter set (elapsed %s):\n", time.Since(start).Round(time.Millisecond))
	for _, s := range aggregate(runs) {
		fmt.Printf("  %s\n", s)
	}
}
