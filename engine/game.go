package engine

// Game is the application plugged into the engine. The callbacks run on the
// frame thread; any of them may be nil.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnShutdown        Shutdown
}

// Initialize runs once the engine loaded its assets, before the first frame.
type Initialize func(e *Engine) error

// Update runs every frame before the scene is updated.
type Update func(deltaTime float64) error

type Shutdown func() error
