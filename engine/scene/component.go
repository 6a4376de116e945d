package scene

import (
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

type ComponentType uint8

const (
	ComponentTypeNone ComponentType = iota
	ComponentTypeAnimator
	ComponentTypeScript
	ComponentTypeCamera
)

var componentTypeNames = map[ComponentType]string{
	ComponentTypeNone:     "none",
	ComponentTypeAnimator: "animator",
	ComponentTypeScript:   "script",
	ComponentTypeCamera:   "camera",
}

func (t ComponentType) String() string {
	if name, ok := componentTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseComponentType is the inverse of ComponentType.String.
func ParseComponentType(name string) (ComponentType, bool) {
	for t, n := range componentTypeNames {
		if n == name {
			return t, true
		}
	}
	return ComponentTypeNone, false
}

// Component is a behaviour attached to exactly one GameObject. Update is
// called once per frame; returning false marks the component as failed and
// the owner skips it on later frames. SaveState and LoadState only deal with
// configuration, never with caches that can be rebuilt.
type Component interface {
	UID() core.UID
	Type() ComponentType
	Owner() *GameObject
	IsActive() bool
	SetActive(active bool)

	Update() bool
	CleanUp() bool
	SaveState(root *serialization.Node) bool
	LoadState(root *serialization.Node) bool
}

// ComponentFactory builds an empty component of a given type for owner, so
// that a scene file can be loaded back into live objects.
type ComponentFactory func(owner *GameObject) Component

// BaseComponent provides the identity part of the Component interface.
type BaseComponent struct {
	uid    core.UID
	typ    ComponentType
	owner  *GameObject
	active bool
}

func NewBaseComponent(owner *GameObject, typ ComponentType) BaseComponent {
	return BaseComponent{
		uid:    core.NewUID(),
		typ:    typ,
		owner:  owner,
		active: true,
	}
}

func (b *BaseComponent) UID() core.UID {
	return b.uid
}

func (b *BaseComponent) SetUID(uid core.UID) {
	b.uid = uid
}

func (b *BaseComponent) Type() ComponentType {
	return b.typ
}

func (b *BaseComponent) Owner() *GameObject {
	return b.owner
}

func (b *BaseComponent) IsActive() bool {
	return b.active
}

func (b *BaseComponent) SetActive(active bool) {
	b.active = active
}
