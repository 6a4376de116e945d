package scene

import (
	"fmt"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

// Time is the frame clock components read their delta from.
type Time interface {
	DeltaTime() float32
	FrameCount() uint64
}

// FrameTime is advanced by the scene once per frame, before any update.
type FrameTime struct {
	delta  float32
	total  float64
	frames uint64
}

func (t *FrameTime) Advance(dt float64) {
	if dt < 0 {
		dt = 0
	}
	t.delta = float32(dt)
	t.total += dt
	t.frames++
}

func (t *FrameTime) DeltaTime() float32 {
	return t.delta
}

func (t *FrameTime) TotalTime() float64 {
	return t.total
}

func (t *FrameTime) FrameCount() uint64 {
	return t.frames
}

// Scene owns the root of a GameObject hierarchy and runs its frame phases.
type Scene struct {
	Name string

	root      *GameObject
	time      FrameTime
	factories map[ComponentType]ComponentFactory
}

func NewScene(name string) *Scene {
	s := &Scene{
		Name:      name,
		root:      NewGameObject("Scene Root"),
		factories: make(map[ComponentType]ComponentFactory),
	}
	s.RegisterComponentFactory(ComponentTypeCamera, func(owner *GameObject) Component {
		return NewCamera(owner)
	})
	return s
}

func (s *Scene) Root() *GameObject {
	return s.root
}

func (s *Scene) Time() *FrameTime {
	return &s.time
}

// RegisterComponentFactory makes components of typ loadable from scene files.
func (s *Scene) RegisterComponentFactory(typ ComponentType, factory ComponentFactory) {
	s.factories[typ] = factory
}

// CreateGameObject creates a named object under parent, or under the root
// when parent is nil.
func (s *Scene) CreateGameObject(name string, parent *GameObject) *GameObject {
	g := NewGameObject(name)
	if parent == nil {
		parent = s.root
	}
	g.SetParent(parent)
	return g
}

func (s *Scene) FindByName(name string) *GameObject {
	return s.root.FindInHierarchy(name)
}

func (s *Scene) FindByUID(uid core.UID) *GameObject {
	return s.root.FindByUID(uid)
}

// Cameras returns the active cameras of active objects, in hierarchy order.
func (s *Scene) Cameras() []*Camera {
	var cameras []*Camera
	s.root.Walk(func(g *GameObject) bool {
		if !g.active {
			return true
		}
		for _, slot := range g.components {
			if c, ok := slot.component.(*Camera); ok && c.IsActive() && !slot.failed {
				cameras = append(cameras, c)
			}
		}
		return true
	})
	return cameras
}

// IsVisible reports whether any camera of the scene sees g. A scene without
// cameras culls nothing.
func (s *Scene) IsVisible(g *GameObject) bool {
	cameras := s.Cameras()
	if len(cameras) == 0 {
		return true
	}
	for _, c := range cameras {
		if c.IsVisible(g) {
			return true
		}
	}
	return false
}

// PreUpdate advances the frame clock.
func (s *Scene) PreUpdate(dt float64) {
	s.time.Advance(dt)
}

// Update runs every component of the hierarchy, parents before children.
func (s *Scene) Update() {
	s.root.Update()
}

// PostUpdate resolves the world matrices after components have written
// their local transforms.
func (s *Scene) PostUpdate() {
	s.root.refreshWorld(math.NewMat4Identity())
}

// Save writes the whole hierarchy below the root.
func (s *Scene) Save(root *serialization.Node) bool {
	root.SetString("name", s.Name)
	return s.root.SaveState(root.SetNode("root"))
}

// Load replaces the current hierarchy with the one stored in root. The old
// hierarchy is destroyed only once the new one loaded.
func (s *Scene) Load(root *serialization.Node) error {
	node, ok := root.GetNode("root")
	if !ok {
		return fmt.Errorf("%w: scene without root", core.ErrInvalidNode)
	}
	g, err := LoadGameObject(node, s.factories)
	if err != nil {
		return err
	}
	if name, ok := root.GetString("name"); ok {
		s.Name = name
	}
	s.root.Destroy()
	s.root = g
	return nil
}

func (s *Scene) CleanUp() {
	s.root.Destroy()
}
