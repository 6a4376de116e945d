package scene

import (
	"fmt"

	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

// SaveState writes g, its components and its children into root.
func (g *GameObject) SaveState(root *serialization.Node) bool {
	root.SetNumber("uid", float64(g.UID))
	root.SetString("name", g.Name)
	root.SetBool("active", g.active)
	saveTransform(root.SetNode("transform"), g.Transform)

	ok := true
	comps := root.SetArray("components")
	for _, s := range g.components {
		node := comps.AppendNode()
		node.SetNumber("uid", float64(s.component.UID()))
		node.SetString("type", s.component.Type().String())
		node.SetBool("active", s.component.IsActive())
		if !s.component.SaveState(node) {
			core.LogWarn("could not save component '%s' of '%s'", s.component.Type(), g.Name)
			ok = false
		}
	}

	children := root.SetArray("children")
	for _, child := range g.children {
		if !child.SaveState(children.AppendNode()) {
			ok = false
		}
	}
	return ok
}

// LoadGameObject rebuilds a subtree saved with SaveState. Components are
// created through factories; unknown component types are skipped and
// logged. Children are loaded before components so that components which
// search the hierarchy on load find it in place.
func LoadGameObject(root *serialization.Node, factories map[ComponentType]ComponentFactory) (*GameObject, error) {
	name, ok := root.GetString("name")
	if !ok {
		return nil, fmt.Errorf("%w: game object without name", core.ErrInvalidNode)
	}
	g := NewGameObject(name)
	if uid, ok := root.GetNumber("uid"); ok {
		g.UID = core.UID(uid)
	}
	if active, ok := root.GetBool("active"); ok {
		g.active = active
	}
	if t, ok := root.GetNode("transform"); ok {
		g.Transform = loadTransform(t)
	}

	if children, ok := root.GetArray("children"); ok {
		for i := 0; i < children.Len(); i++ {
			node, ok := children.GetNode(i)
			if !ok {
				return nil, fmt.Errorf("%w: child %d of '%s' is not an object", core.ErrInvalidNode, i, name)
			}
			child, err := LoadGameObject(node, factories)
			if err != nil {
				return nil, err
			}
			child.SetParent(g)
		}
	}

	if comps, ok := root.GetArray("components"); ok {
		for i := 0; i < comps.Len(); i++ {
			node, ok := comps.GetNode(i)
			if !ok {
				return nil, fmt.Errorf("%w: component %d of '%s' is not an object", core.ErrInvalidNode, i, name)
			}
			typeName, _ := node.GetString("type")
			typ, known := ParseComponentType(typeName)
			factory, registered := factories[typ]
			if !known || !registered {
				core.LogWarn("no factory for component type '%s' on '%s', skipping", typeName, name)
				continue
			}
			c := factory(g)
			if uid, ok := node.GetNumber("uid"); ok {
				if setter, ok := c.(interface{ SetUID(core.UID) }); ok {
					setter.SetUID(core.UID(uid))
				}
			}
			if active, ok := node.GetBool("active"); ok {
				c.SetActive(active)
			}
			if !c.LoadState(node) {
				core.LogWarn("component '%s' of '%s' did not load cleanly", typeName, name)
			}
			g.AddComponent(c)
		}
	}
	return g, nil
}

func saveTransform(node *serialization.Node, t math.Transform) {
	pos := node.SetArray("position")
	pos.AppendNumber(float64(t.Position.X))
	pos.AppendNumber(float64(t.Position.Y))
	pos.AppendNumber(float64(t.Position.Z))
	rot := node.SetArray("rotation")
	rot.AppendNumber(float64(t.Rotation.X))
	rot.AppendNumber(float64(t.Rotation.Y))
	rot.AppendNumber(float64(t.Rotation.Z))
	rot.AppendNumber(float64(t.Rotation.W))
	scale := node.SetArray("scale")
	scale.AppendNumber(float64(t.Scale.X))
	scale.AppendNumber(float64(t.Scale.Y))
	scale.AppendNumber(float64(t.Scale.Z))
}

func loadTransform(node *serialization.Node) math.Transform {
	t := math.TransformCreate()
	if v, ok := readFloats(node, "position", 3); ok {
		t.SetPosition(math.NewVec3(v[0], v[1], v[2]))
	}
	if v, ok := readFloats(node, "rotation", 4); ok {
		t.SetRotation(math.NewQuat(v[0], v[1], v[2], v[3]))
	}
	if v, ok := readFloats(node, "scale", 3); ok {
		t.SetScale(math.NewVec3(v[0], v[1], v[2]))
	}
	return t
}

func readFloats(node *serialization.Node, name string, n int) ([]float32, bool) {
	arr, ok := node.GetArray(name)
	if !ok || arr.Len() != n {
		return nil, false
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, ok := arr.GetNumber(i)
		if !ok {
			return nil, false
		}
		out[i] = float32(v)
	}
	return out, true
}
