package scene

import (
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

/** @brief The name of the default camera. */
const DefaultCameraName string = "default"

/**
 * @brief A camera looks down the -Z axis of its owner. It renders nothing
 * itself; the scene uses it to decide which objects are visible, which lets
 * animators skip posing objects no camera sees.
 */
type Camera struct {
	BaseComponent

	/** @brief Full opening angle of the view cone, in radians. */
	FieldOfView float32
	/** @brief Objects closer than this are not visible. */
	Near float32
	/** @brief Objects further than this are not visible. */
	Far float32
}

func NewCamera(owner *GameObject) *Camera {
	c := &Camera{BaseComponent: NewBaseComponent(owner, ComponentTypeCamera)}
	c.Reset()
	return c
}

// Reset restores a 60 degree view reaching from 0.1 to 1000 units.
func (c *Camera) Reset() {
	c.FieldOfView = math.DegToRad(60)
	c.Near = 0.1
	c.Far = 1000
}

func (c *Camera) Forward() math.Vec3 {
	return c.Owner().WorldMatrix().Forward()
}

// IsVisible reports whether the world position of target lies inside the
// view cone between the near and far distances.
func (c *Camera) IsVisible(target *GameObject) bool {
	if target == nil {
		return false
	}
	view := c.Owner().WorldMatrix()
	offset := target.WorldPosition().Sub(view.Position())
	distance := offset.Length()
	if distance < c.Near || distance > c.Far {
		return false
	}
	if distance == 0 {
		return true
	}
	cosine := offset.MulScalar(1 / distance).Dot(view.Forward())
	return cosine >= math.Cos(c.FieldOfView/2)
}

func (c *Camera) Update() bool {
	return c.Near >= 0 && c.Far > c.Near && c.FieldOfView > 0
}

func (c *Camera) CleanUp() bool {
	return true
}

func (c *Camera) SaveState(root *serialization.Node) bool {
	root.SetNumber("field_of_view", float64(math.RadToDeg(c.FieldOfView)))
	root.SetNumber("near", float64(c.Near))
	root.SetNumber("far", float64(c.Far))
	return true
}

func (c *Camera) LoadState(root *serialization.Node) bool {
	fov, ok := root.GetNumber("field_of_view")
	if !ok || fov <= 0 {
		return false
	}
	near, ok := root.GetNumber("near")
	if !ok {
		return false
	}
	far, ok := root.GetNumber("far")
	if !ok || near < 0 || far <= near {
		return false
	}
	c.FieldOfView = math.DegToRad(float32(fov))
	c.Near = float32(near)
	c.Far = float32(far)
	return true
}
