package main

import (
	"errors"
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Rad-Mapper/internal/game"
	"github.com/Garsondee/Rad-Mapper/internal/logger"
	"github.com/Garsondee/Rad-Mapper/internal/sim"
)

const (
	windowW = 1280
	windowH = 720
)

func main() {
	st := sim.DefaultSettings()
	var seed int64
	var plots string

	flag.IntVar(&st.GroundSeconds, "ground-time", st.GroundSeconds, "ground mapping time in seconds")
	flag.IntVar(&st.AerialSeconds, "aerial-time", st.AerialSeconds, "aerial mapping time in seconds")
	flag.IntVar(&st.MaxSources, "max-sources", st.MaxSources, "maximum hidden sources per mapping run")
	flag.IntVar(&st.CellSize, "cell-size", st.CellSize, "grid cell size in pixels")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 = time based)")
	flag.StringVar(&plots, "plots", "plots", "directory for finished heatmaps (empty disables)")
	flag.Parse()

	logger.Init()
	log := logger.Log

	g, err := game.New(game.Config{
		Settings: st,
		Seed:     seed,
		PlotDir:  plots,
		Log:      log,
		Width:    windowW,
		Height:   windowH,
	})
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ebiten.SetWindowTitle("Rad Mapper")
	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		log.WithError(err).Fatal("game exited")
	}
}
