package main

import (
	"github.com/wallplay/wallplay/pkg/app"
	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/logger"
	"github.com/wallplay/wallplay/pkg/os"
	"github.com/wallplay/wallplay/pkg/thread"
)

var Version = ""

func run() {
	conf := config.NewWallplayConfig("")
	conf.ParseFlags()

	log := logger.NewConsole(conf.Wallplay.Debug, "wallplay", false)
	if Version != "" {
		log.Info().Str("version", Version).Msg("starting")
	}
	if err := conf.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	a, err := app.New(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialization failed")
	}

	a.Run(os.ExpectTermination())
	a.Shutdown()
}

func main() {
	// SDL windowing and GL calls are bound to the main OS thread.
	thread.Wrap(run)
}
