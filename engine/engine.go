package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/resources"
	"github.com/spaghettifunk/anima-runtime/engine/scene"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
	"github.com/spaghettifunk/anima-runtime/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine shut down; it cannot be restarted
	EngineStageShutDown
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	clock        *core.Clock
	metrics      *core.Metrics
	events       *core.EventBus
	quit         atomic.Bool
	jobSystem    *systems.JobSystem
	resources    *resources.Manager
	scene        *scene.Scene
	lastTime     float64
}

func New(g *Game) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: no game", core.ErrInvalidConfig)
	}
	if g.ApplicationConfig == nil {
		config := DefaultApplicationConfig()
		g.ApplicationConfig = &config
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(config.LogLevel)

	js, err := systems.NewJobSystem(config.Workers, config.Workers*4)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	events := core.NewEventBus()
	rm := resources.NewManager(js)
	rm.SetEvents(events)

	s := scene.NewScene(config.Name)
	s.RegisterComponentFactory(scene.ComponentTypeAnimator, animation.Factory(s.Time(), rm, s))

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       config,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		events:       events,
		jobSystem:    js,
		resources:    rm,
		scene:        s,
	}
	events.Register(core.EventCodeApplicationQuit, e, e.onQuit)
	return e, nil
}

func (e *Engine) onQuit(code core.EventCode, sender any, listener any, data core.EventContext) bool {
	core.LogInfo("quit requested")
	e.quit.Store(true)
	return true
}

// Initialize loads the assets and the start scene, then hands over to the
// game's initialize callback.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	if e.config.AssetPath != "" {
		if _, err := e.resources.LoadDirectory(e.config.AssetPath); err != nil {
			// broken files are reported but do not stop the engine
			core.LogWarn("some assets failed to load: %s", err)
		}
		if e.config.WatchAssets {
			if err := e.resources.Watch(e.config.AssetPath); err != nil {
				core.LogWarn("asset hot reload disabled: %s", err)
			}
		}
	}

	if e.config.Scene != "" {
		if err := e.LoadScene(e.config.Scene); err != nil {
			return err
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized: %d animations, scene '%s'", len(e.resources.Animations()), e.scene.Name)
	return nil
}

// Frame runs one frame of dt seconds: queued asset changes and the frame
// clock first, then the game and the scene hierarchy, then world matrices
// and metrics.
func (e *Engine) Frame(dt float64) error {
	frameStart := time.Now()

	// PreUpdate
	e.resources.Update()
	e.scene.PreUpdate(dt)

	// Update
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(dt); err != nil {
			return err
		}
	}
	e.scene.Update()

	// PostUpdate
	e.scene.PostUpdate()
	e.metrics.Update(time.Since(frameStart).Seconds())
	return nil
}

// Run drives frames from the wall clock until ctx is cancelled, a frame
// fails, the quit event fires or MaxFrames frames have run.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning
	e.quit.Store(false)
	defer func() {
		if e.currentStage == EngineStageRunning {
			e.currentStage = EngineStageInitialized
		}
	}()

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if e.config.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / float64(e.config.TargetFPS)
	}

	var frames uint64
	for {
		select {
		case <-ctx.Done():
			core.LogInfo("engine stopped after %d frames", frames)
			return nil
		default:
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		if err := e.Frame(delta); err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			return err
		}
		e.lastTime = currentTime
		frames++
		if e.quit.Load() {
			core.LogInfo("engine stopped after %d frames", frames)
			return nil
		}
		if e.config.MaxFrames > 0 && frames >= e.config.MaxFrames {
			core.LogInfo("engine reached %d frames", frames)
			return nil
		}

		// Give the rest of the frame budget back to the OS.
		remaining := targetFrameSeconds - time.Since(frameStartTime).Seconds()
		if remaining > 0 {
			timer := time.NewTimer(time.Duration(remaining * float64(time.Second)))
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	var err error
	if e.gameInstance.FnShutdown != nil {
		err = e.gameInstance.FnShutdown()
	}
	e.scene.CleanUp()
	e.resources.Shutdown()
	e.events.Clear()
	if jerr := e.jobSystem.Shutdown(); jerr != nil && err == nil {
		err = jerr
	}
	e.currentStage = EngineStageShutDown
	return err
}

// SaveScene writes the current scene to path (.json or .toml).
func (e *Engine) SaveScene(path string) error {
	node := serialization.NewNode()
	if !e.scene.Save(node) {
		return fmt.Errorf("%w: scene '%s' could not be saved", core.ErrInvalidNode, e.scene.Name)
	}
	return e.resources.SaveScene(path, node)
}

// LoadScene replaces the current hierarchy with the one saved at path.
func (e *Engine) LoadScene(path string) error {
	node, err := e.resources.LoadScene(path)
	if err != nil {
		return err
	}
	if err := e.scene.Load(node); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	core.LogInfo("scene '%s' loaded from '%s'", e.scene.Name, path)
	return nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) Resources() *resources.Manager {
	return e.resources
}

func (e *Engine) Events() *core.EventBus {
	return e.events
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}
