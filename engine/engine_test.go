package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/scene"
)

const walkAnim = `
name = "Walk"
duration = 20.0
ticks_per_second = 10.0

[[channels]]
name = "Hip"
position_keys = [
  { time = 0.0, value = [0.0, 0.0, 0.0] },
  { time = 10.0, value = [0.0, 1.0, 0.0] },
  { time = 20.0, value = [0.0, 0.0, 0.0] },
]
`

func TestMain(m *testing.M) {
	core.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

func TestParseApplicationConfig(t *testing.T) {
	config, err := ParseApplicationConfig([]byte(`
name = "Testbed"
log_level = "debug"
workers = 4
max_frames = 120
`))
	if err != nil {
		t.Fatalf("ParseApplicationConfig: %s", err)
	}
	if config.Name != "Testbed" || config.LogLevel != core.LogLevelDebug || config.Workers != 4 || config.MaxFrames != 120 {
		t.Errorf("config = %+v", config)
	}
	if config.TargetFPS != 60 {
		t.Errorf("target fps = %d, want the default 60", config.TargetFPS)
	}
}

func TestParseApplicationConfigRejects(t *testing.T) {
	tests := map[string]string{
		"unknown field": "width = 1280\n",
		"no workers":    "workers = 0\n",
		"bad level":     "log_level = \"loud\"\n",
		"empty name":    "name = \"\"\n",
		"not toml":      "name = ",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseApplicationConfig([]byte(data)); !errors.Is(err, core.ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

type testGame struct {
	animator *animation.Animator
	hip      *scene.GameObject
	updates  int
}

func newTestEngine(t *testing.T, assets string) (*Engine, *testGame) {
	t.Helper()
	config := DefaultApplicationConfig()
	config.Name = "Test"
	config.AssetPath = assets
	config.TargetFPS = 0

	tg := &testGame{}
	g := &Game{
		ApplicationConfig: &config,
		State:             tg,
		FnInitialize: func(e *Engine) error {
			s := e.Scene()
			character := s.CreateGameObject("Character", nil)
			tg.hip = s.CreateGameObject("Hip", character)
			tg.animator = animation.NewAnimator(character, s.Time(), e.Resources())
			character.AddComponent(tg.animator)
			if !tg.animator.SetCurrentAnimationByName("Walk") {
				return errors.New("Walk not loaded")
			}
			tg.animator.Play()
			return nil
		},
		FnUpdate: func(float64) error {
			tg.updates++
			return nil
		},
	}
	e, err := New(g)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	t.Cleanup(func() { e.Shutdown() })
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize: %s", err)
	}
	return e, tg
}

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "walk.anim"), []byte(walkAnim), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFrameDrivesAnimators(t *testing.T) {
	e, tg := newTestEngine(t, writeAssets(t))

	for i := 0; i < 2; i++ {
		if err := e.Frame(0.5); err != nil {
			t.Fatalf("Frame: %s", err)
		}
	}
	if tg.updates != 2 {
		t.Errorf("game updates = %d, want 2", tg.updates)
	}
	if got := tg.animator.GetAnimationTick(); got != 10 {
		t.Errorf("tick = %v, want 10", got)
	}
	if got := tg.hip.CachedWorldMatrix().Position(); got.Y != 1 {
		t.Errorf("hip world position = %v, want y 1", got)
	}
	if e.Metrics().TotalFrames != 2 {
		t.Errorf("metrics frames = %d, want 2", e.Metrics().TotalFrames)
	}
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	e, tg := newTestEngine(t, writeAssets(t))
	e.Config().MaxFrames = 5

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if tg.updates != 5 {
		t.Errorf("frames run = %d, want 5", tg.updates)
	}
	if e.Stage() != EngineStageInitialized {
		t.Errorf("stage after Run = %d", e.Stage())
	}
}

func TestRunStopsOnQuitEvent(t *testing.T) {
	e, tg := newTestEngine(t, writeAssets(t))
	e.gameInstance.FnUpdate = func(float64) error {
		tg.updates++
		if tg.updates == 3 {
			e.Events().Fire(core.EventCodeApplicationQuit, nil, core.EventContext{})
		}
		return nil
	}
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if tg.updates != 3 {
		t.Errorf("frames run = %d, want 3", tg.updates)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(t, writeAssets(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); err != nil {
		t.Errorf("Run: %s", err)
	}
}

func TestSceneSaveAndLoad(t *testing.T) {
	e, tg := newTestEngine(t, writeAssets(t))
	tg.animator.SetPlaybackSpeed(2)
	path := filepath.Join(t.TempDir(), "level.toml")

	if err := e.SaveScene(path); err != nil {
		t.Fatalf("SaveScene: %s", err)
	}
	if err := e.LoadScene(path); err != nil {
		t.Fatalf("LoadScene: %s", err)
	}
	character := e.Scene().FindByName("Character")
	if character == nil {
		t.Fatal("Character missing after load")
	}
	a, ok := scene.GetComponent[*animation.Animator](character)
	if !ok {
		t.Fatal("animator missing after load")
	}
	if a == tg.animator || a.GetAnimationName() != "Walk" || a.GetPlaybackSpeed() != 2 {
		t.Errorf("loaded animator: name %q speed %v", a.GetAnimationName(), a.GetPlaybackSpeed())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Workers = 0
	if _, err := New(&Game{ApplicationConfig: &config}); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}
