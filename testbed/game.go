package testbed

import (
	"github.com/spaghettifunk/anima-runtime/engine"
	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/scene"
)

// Seconds of walking before the testbed cross-fades into the run cycle.
const walkSeconds = 3.0

// Frames the cross-fade from walk to run takes.
const blendFrames = 30

// Ground speed of the character in units per second, per cycle.
const (
	walkSpeed = 1.0
	runSpeed  = 2.5
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	engine    *engine.Engine
	character *scene.GameObject
	animator  *animation.Animator
	elapsed   float64
	running   bool
	logTimer  float64
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize(e *engine.Engine) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	state.engine = e

	// Animations normally come from the asset directory; generate the two
	// cycles when it has none.
	rm := e.Resources()
	for _, build := range []func() (*animation.Animation, error){walkCycle, runCycle} {
		anim, err := build()
		if err != nil {
			return err
		}
		if _, ok := rm.GetAnimation(anim.Name); !ok {
			rm.AddAnimation(anim)
		}
	}

	e.Events().Register(core.EventCodeAssetReloaded, g, func(code core.EventCode, sender any, listener any, data core.EventContext) bool {
		core.LogInfo("animation '%s' changed on disk, animators keep playing the new version", data.Name)
		return false
	})

	s := e.Scene()
	if found := s.FindByName("Character"); found != nil {
		state.character = found
		if a, ok := scene.GetComponent[*animation.Animator](found); ok {
			state.animator = a
		}
	}
	if state.character == nil {
		state.character = buildSkeleton(s)
	}
	if len(s.Cameras()) == 0 {
		eye := s.CreateGameObject(scene.DefaultCameraName, nil)
		eye.Transform.SetPosition(math.NewVec3(0, 1, 5))
		eye.AddComponent(scene.NewCamera(eye))
	}
	if state.animator == nil {
		a := animation.NewAnimator(state.character, s.Time(), rm)
		state.character.AddComponent(a)
		a.SetRootBone(state.character.FindInHierarchy("Hips"))
		a.SetShowBones(true)
		a.SetCuller(s)
		a.SetCameraCulling(true)
		if !a.SetCurrentAnimationByName("Walk") {
			return core.ErrAnimationNotFound
		}
		a.Play()
		state.animator = a
	}

	core.LogInfo("testbed ready: '%s' plays '%s' over %d bones", state.character.Name, state.animator.GetAnimationName(), len(state.animator.BoneLinks()))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	state.logTimer += deltaTime

	if !state.running && state.elapsed >= walkSeconds {
		if run, ok := state.engine.Resources().GetAnimation("Run"); ok {
			state.animator.SetBlendingAnimation(run, blendFrames)
			state.running = true
			core.LogInfo("blending into '%s' over %d frames", run.Name, blendFrames)
		}
	}

	speed := walkSpeed
	if state.running {
		speed = runSpeed
	}
	state.character.Transform.Translate(math.NewVec3(0, 0, float32(-speed*deltaTime)))

	if state.logTimer >= 1.0 {
		state.logTimer = 0
		fps, frameMS := state.engine.Metrics().Frame()
		segments := 0
		if state.animator.GetShowBones() {
			for range state.animator.GetDisplayBones() {
				segments++
			}
		}
		core.LogDebug("'%s' tick %.2f blend %.2f | %d bone segments | %.0f fps %.3f ms",
			state.animator.GetAnimationName(), state.animator.GetAnimationTick(),
			state.animator.BlendFactor(), segments, fps, frameMS)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("testbed shutting down")
	return nil
}

// buildSkeleton creates a small biped: Hips with a spine and head, and two
// legs with feet.
func buildSkeleton(s *scene.Scene) *scene.GameObject {
	character := s.CreateGameObject("Character", nil)
	hips := s.CreateGameObject("Hips", character)
	hips.Transform = math.TransformFromPosition(math.NewVec3(0, 1, 0))

	spine := s.CreateGameObject("Spine", hips)
	spine.Transform.SetPosition(math.NewVec3(0, 0.4, 0))
	head := s.CreateGameObject("Head", spine)
	head.Transform.SetPosition(math.NewVec3(0, 0.4, 0))

	for _, side := range []struct {
		name string
		x    float32
	}{{"Left", -0.15}, {"Right", 0.15}} {
		leg := s.CreateGameObject(side.name+"Leg", hips)
		leg.Transform.SetPosition(math.NewVec3(side.x, -0.5, 0))
		foot := s.CreateGameObject(side.name+"Foot", leg)
		foot.Transform.SetPosition(math.NewVec3(0, -0.5, 0))
	}
	return character
}

func walkCycle() (*animation.Animation, error) {
	return legCycle("Walk", 24, 20)
}

func runCycle() (*animation.Animation, error) {
	return legCycle("Run", 16, 40)
}

// legCycle swings the legs in opposite phase and bobs the hips twice per
// cycle. swing is the leg angle in degrees.
func legCycle(name string, duration float64, swing float32) (*animation.Animation, error) {
	axis := math.NewVec3(1, 0, 0)
	rot := func(deg float32) math.Quaternion {
		return math.NewQuatFromAxisAngle(axis, math.DegToRad(deg), true)
	}
	half, quarter := duration/2, duration/4

	left := animation.Channel{
		Name: "LeftLeg",
		RotationKeys: []animation.QuatKey{
			{Time: 0, Value: rot(swing)},
			{Time: half, Value: rot(-swing)},
			{Time: duration, Value: rot(swing)},
		},
	}
	right := animation.Channel{
		Name: "RightLeg",
		RotationKeys: []animation.QuatKey{
			{Time: 0, Value: rot(-swing)},
			{Time: half, Value: rot(swing)},
			{Time: duration, Value: rot(-swing)},
		},
	}
	hips := animation.Channel{Name: "Hips"}
	for t := 0.0; t <= duration; t += quarter {
		y := float32(1.0)
		if int(t/quarter)%2 == 1 {
			y = 1.05
		}
		hips.PositionKeys = append(hips.PositionKeys, animation.VectorKey{Time: t, Value: math.NewVec3(0, y, 0)})
	}
	return animation.NewAnimation(name, duration, animation.DefaultTicksPerSecond, []animation.Channel{hips, left, right})
}
