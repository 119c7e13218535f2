//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"path/filepath"

	"lichtenberg/internal/app"
	"lichtenberg/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if cfg.Grid == "" {
		log.Fatal("missing -grid")
	}
	g, err := core.LoadGrid(cfg.Grid)
	if err != nil {
		log.Fatal(err)
	}

	replay := app.NewReplay(g)
	game := app.New(replay, filepath.Base(cfg.Grid), cfg.Scale, cfg.Rate)
	size := replay.Size()

	ebiten.SetWindowTitle("lichtenberg: " + cfg.Grid)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(game.Layout(size.W*cfg.Scale, size.H*cfg.Scale))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
