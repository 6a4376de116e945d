/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spaghettifunk/anima-runtime/engine"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML application config")
	frames := flag.Uint64("frames", 0, "stop after this many frames (overrides the config)")
	profileMode := flag.String("profile", "", "write a profile to the working directory: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		core.LogError("unknown profile mode '%s'", *profileMode)
		os.Exit(2)
	}

	config := engine.DefaultApplicationConfig()
	if *configPath != "" {
		loaded, err := engine.LoadApplicationConfig(*configPath)
		if err != nil {
			core.LogError("cannot load config: %s", err)
			os.Exit(1)
		}
		config = *loaded
	}
	if *frames > 0 {
		config.MaxFrames = *frames
	}
	if level := os.Getenv("ANIMA_LOG_LEVEL"); level != "" {
		config.LogLevel = core.LogLevel(level)
	}

	tb := testbed.NewTestGame(&config)

	engine, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := engine.Initialize(); err != nil {
		panic(err)
	}

	// cancel the frame loop on sigterm and other system calls
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := engine.Run(ctx)
	if err := engine.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		panic(runErr)
	}
}
