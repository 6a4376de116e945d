package scene

import (
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
)

type componentSlot struct {
	component Component
	failed    bool
}

// GameObject is a node of the scene hierarchy. It owns its components and
// its children; the parent pointer is a back-reference only.
type GameObject struct {
	UID       core.UID
	Name      string
	Transform math.Transform

	world      math.Mat4
	active     bool
	parent     *GameObject
	children   []*GameObject
	components []componentSlot
}

func NewGameObject(name string) *GameObject {
	return &GameObject{
		UID:       core.NewUID(),
		Name:      name,
		Transform: math.TransformCreate(),
		world:     math.NewMat4Identity(),
		active:    true,
	}
}

func (g *GameObject) IsActive() bool {
	return g.active
}

func (g *GameObject) SetActive(active bool) {
	g.active = active
}

func (g *GameObject) Parent() *GameObject {
	return g.parent
}

// Children returns the children in order. The slice must not be modified.
func (g *GameObject) Children() []*GameObject {
	return g.children
}

// IsAncestorOf reports whether g is a strict ancestor of other.
func (g *GameObject) IsAncestorOf(other *GameObject) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == g {
			return true
		}
	}
	return false
}

// SetParent moves g under parent, appending it to the parent's children.
// Reparenting onto g itself or onto one of its descendants is rejected to
// keep the hierarchy acyclic. A nil parent detaches g.
func (g *GameObject) SetParent(parent *GameObject) bool {
	if parent == g || (parent != nil && g.IsAncestorOf(parent)) {
		core.LogWarn("cannot parent '%s' under '%s': would create a cycle", g.Name, parent.Name)
		return false
	}
	if g.parent != nil {
		g.parent.removeChild(g)
	}
	g.parent = parent
	if parent != nil {
		parent.children = append(parent.children, g)
	}
	return true
}

func (g *GameObject) AddChild(child *GameObject) bool {
	return child.SetParent(g)
}

func (g *GameObject) removeChild(child *GameObject) {
	for i, c := range g.children {
		if c == child {
			g.children = append(g.children[:i], g.children[i+1:]...)
			return
		}
	}
}

// AddComponent attaches c, which must have been created for g. Components
// are updated in attachment order.
func (g *GameObject) AddComponent(c Component) bool {
	if c == nil || c.Owner() != g {
		core.LogError("component does not belong to game object '%s'", g.Name)
		return false
	}
	for _, s := range g.components {
		if s.component == c {
			return false
		}
	}
	g.components = append(g.components, componentSlot{component: c})
	return true
}

// RemoveComponent cleans c up and drops it from the update set.
func (g *GameObject) RemoveComponent(c Component) bool {
	for i, s := range g.components {
		if s.component == c {
			c.CleanUp()
			g.components = append(g.components[:i], g.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the attached components in attachment order.
func (g *GameObject) Components() []Component {
	out := make([]Component, len(g.components))
	for i, s := range g.components {
		out[i] = s.component
	}
	return out
}

// GetComponent returns the first component of g with the concrete type T.
func GetComponent[T Component](g *GameObject) (T, bool) {
	for _, s := range g.components {
		if c, ok := s.component.(T); ok {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// Update runs the components of g in attachment order and then recurses into
// the children in order, so a parent is always resolved before its children.
func (g *GameObject) Update() {
	parentWorld := math.NewMat4Identity()
	if g.parent != nil {
		parentWorld = g.parent.WorldMatrix()
	}
	g.update(parentWorld)
}

func (g *GameObject) update(parentWorld math.Mat4) {
	if !g.active {
		return
	}
	for i := range g.components {
		s := &g.components[i]
		if s.failed || !s.component.IsActive() {
			continue
		}
		if !s.component.Update() {
			core.LogError("component '%s' of '%s' failed to update; it will be skipped", s.component.Type(), g.Name)
			s.failed = true
		}
	}
	g.world = g.Transform.GetWorld(parentWorld)
	for _, child := range g.children {
		child.update(g.world)
	}
}

func (g *GameObject) refreshWorld(parentWorld math.Mat4) {
	g.world = g.Transform.GetWorld(parentWorld)
	for _, child := range g.children {
		child.refreshWorld(g.world)
	}
}

// ComponentFailed reports whether c has been disabled after a failed update.
func (g *GameObject) ComponentFailed(c Component) bool {
	for _, s := range g.components {
		if s.component == c {
			return s.failed
		}
	}
	return false
}

// WorldMatrix computes the world matrix from the current local transforms of
// g and all its ancestors.
func (g *GameObject) WorldMatrix() math.Mat4 {
	if g.parent == nil {
		return g.Transform.GetLocal()
	}
	return g.Transform.GetWorld(g.parent.WorldMatrix())
}

// CachedWorldMatrix returns the world matrix resolved during the last update
// pass.
func (g *GameObject) CachedWorldMatrix() math.Mat4 {
	return g.world
}

// WorldPosition is the translation part of WorldMatrix.
func (g *GameObject) WorldPosition() math.Vec3 {
	return g.WorldMatrix().Position()
}

// Walk visits g and its descendants depth-first, parents before children.
// Returning false from fn stops the walk.
func (g *GameObject) Walk(fn func(*GameObject) bool) bool {
	if !fn(g) {
		return false
	}
	for _, child := range g.children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// FindInHierarchy returns the first object named name in the subtree rooted
// at g, g included, in depth-first order.
func (g *GameObject) FindInHierarchy(name string) *GameObject {
	var found *GameObject
	g.Walk(func(o *GameObject) bool {
		if o.Name == name {
			found = o
			return false
		}
		return true
	})
	return found
}

// FindChild returns the first descendant of g named name, depth-first. g
// itself is never returned.
func (g *GameObject) FindChild(name string) *GameObject {
	for _, child := range g.children {
		if found := child.FindInHierarchy(name); found != nil {
			return found
		}
	}
	return nil
}

// FindByUID searches the subtree rooted at g.
func (g *GameObject) FindByUID(uid core.UID) *GameObject {
	var found *GameObject
	g.Walk(func(o *GameObject) bool {
		if o.UID == uid {
			found = o
			return false
		}
		return true
	})
	return found
}

// Destroy cleans up every component in the subtree and detaches g from its
// parent.
func (g *GameObject) Destroy() {
	for _, child := range append([]*GameObject(nil), g.children...) {
		child.Destroy()
	}
	for _, s := range g.components {
		s.component.CleanUp()
	}
	g.components = nil
	if g.parent != nil {
		g.parent.removeChild(g)
		g.parent = nil
	}
}
