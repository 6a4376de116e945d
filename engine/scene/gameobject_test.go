package scene

import (
	"testing"

	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

type recorder struct {
	BaseComponent
	label    string
	log      *[]string
	fail     bool
	cleaned  int
	Strength float64
}

func newRecorder(owner *GameObject, label string, log *[]string) *recorder {
	return &recorder{
		BaseComponent: NewBaseComponent(owner, ComponentTypeScript),
		label:         label,
		log:           log,
	}
}

func (r *recorder) Update() bool {
	*r.log = append(*r.log, r.label)
	return !r.fail
}

func (r *recorder) CleanUp() bool {
	r.cleaned++
	return true
}

func (r *recorder) SaveState(root *serialization.Node) bool {
	root.SetString("label", r.label)
	root.SetNumber("strength", r.Strength)
	return true
}

func (r *recorder) LoadState(root *serialization.Node) bool {
	label, ok := root.GetString("label")
	if !ok {
		return false
	}
	r.label = label
	r.Strength, _ = root.GetNumber("strength")
	return true
}

func TestUpdateOrderParentBeforeChild(t *testing.T) {
	var log []string
	s := NewScene("order")
	a := s.CreateGameObject("A", nil)
	b := s.CreateGameObject("B", a)
	c := s.CreateGameObject("C", a)
	d := s.CreateGameObject("D", b)

	a.AddComponent(newRecorder(a, "a1", &log))
	a.AddComponent(newRecorder(a, "a2", &log))
	b.AddComponent(newRecorder(b, "b", &log))
	c.AddComponent(newRecorder(c, "c", &log))
	d.AddComponent(newRecorder(d, "d", &log))

	s.Update()

	want := []string{"a1", "a2", "b", "d", "c"}
	if len(log) != len(want) {
		t.Fatalf("update log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("update log = %v, want %v", log, want)
			break
		}
	}
}

func TestFailedComponentIsSkippedNotRemoved(t *testing.T) {
	var log []string
	g := NewGameObject("G")
	bad := newRecorder(g, "bad", &log)
	bad.fail = true
	good := newRecorder(g, "good", &log)
	g.AddComponent(bad)
	g.AddComponent(good)

	g.Update()
	g.Update()

	if got := len(g.Components()); got != 2 {
		t.Errorf("components = %d, want 2", got)
	}
	if !g.ComponentFailed(bad) {
		t.Error("expected bad component to be marked failed")
	}
	count := 0
	for _, l := range log {
		if l == "bad" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("failed component updated %d times, want 1", count)
	}
}

func TestAddComponentRejectsForeignOwner(t *testing.T) {
	var log []string
	a := NewGameObject("A")
	b := NewGameObject("B")
	if a.AddComponent(newRecorder(b, "x", &log)) {
		t.Error("AddComponent accepted a component owned by another object")
	}
}

func TestRemoveComponentCleansUp(t *testing.T) {
	var log []string
	g := NewGameObject("G")
	r := newRecorder(g, "r", &log)
	g.AddComponent(r)

	if !g.RemoveComponent(r) {
		t.Fatal("RemoveComponent returned false")
	}
	if r.cleaned != 1 {
		t.Errorf("CleanUp calls = %d, want 1", r.cleaned)
	}
	g.Update()
	if len(log) != 0 {
		t.Errorf("removed component was updated: %v", log)
	}
}

func TestSetParentRejectsCycles(t *testing.T) {
	a := NewGameObject("A")
	b := NewGameObject("B")
	c := NewGameObject("C")
	b.SetParent(a)
	c.SetParent(b)

	if a.SetParent(c) {
		t.Error("SetParent accepted a descendant as parent")
	}
	if a.SetParent(a) {
		t.Error("SetParent accepted self as parent")
	}
	if a.Parent() != nil {
		t.Errorf("A parent = %v, want nil", a.Parent())
	}
}

func TestSetParentMovesChild(t *testing.T) {
	a := NewGameObject("A")
	b := NewGameObject("B")
	c := NewGameObject("C")
	c.SetParent(a)
	c.SetParent(b)

	if len(a.Children()) != 0 {
		t.Errorf("A children = %d, want 0", len(a.Children()))
	}
	if len(b.Children()) != 1 || b.Children()[0] != c {
		t.Errorf("B children = %v, want [C]", b.Children())
	}
}

func TestFindInHierarchy(t *testing.T) {
	s := NewScene("find")
	hip := s.CreateGameObject("Hip", nil)
	leg := s.CreateGameObject("Leg", hip)
	foot := s.CreateGameObject("Foot", leg)

	if got := hip.FindInHierarchy("Foot"); got != foot {
		t.Errorf("FindInHierarchy(Foot) = %v, want %v", got, foot)
	}
	if got := hip.FindInHierarchy("Hip"); got != hip {
		t.Errorf("FindInHierarchy(Hip) = %v, want self", got)
	}
	if got := leg.FindInHierarchy("Hip"); got != nil {
		t.Errorf("FindInHierarchy found an ancestor: %v", got)
	}
	if got := s.FindByUID(foot.UID); got != foot {
		t.Errorf("FindByUID = %v, want %v", got, foot)
	}
}

func TestWorldMatrixFollowsAncestors(t *testing.T) {
	s := NewScene("world")
	a := s.CreateGameObject("A", nil)
	b := s.CreateGameObject("B", a)
	a.Transform.SetPosition(math.NewVec3(1, 0, 0))
	b.Transform.SetPosition(math.NewVec3(0, 2, 0))

	if got := b.WorldPosition(); !got.Compare(math.NewVec3(1, 2, 0), math.K_FLOAT_EPSILON) {
		t.Errorf("B world position = %v, want (1, 2, 0)", got)
	}

	a.Transform.SetPosition(math.NewVec3(5, 0, 0))
	s.Update()
	if got := b.CachedWorldMatrix().Position(); !got.Compare(math.NewVec3(5, 2, 0), math.K_FLOAT_EPSILON) {
		t.Errorf("B cached world position = %v, want (5, 2, 0)", got)
	}

	a.Transform.SetPosition(math.NewVec3(7, 0, 0))
	s.PostUpdate()
	if got := b.CachedWorldMatrix().Position(); !got.Compare(math.NewVec3(7, 2, 0), math.K_FLOAT_EPSILON) {
		t.Errorf("B cached world position after PostUpdate = %v, want (7, 2, 0)", got)
	}
}

func TestDestroyCleansSubtree(t *testing.T) {
	var log []string
	s := NewScene("destroy")
	a := s.CreateGameObject("A", nil)
	b := s.CreateGameObject("B", a)
	ra := newRecorder(a, "a", &log)
	rb := newRecorder(b, "b", &log)
	a.AddComponent(ra)
	b.AddComponent(rb)

	a.Destroy()

	if ra.cleaned != 1 || rb.cleaned != 1 {
		t.Errorf("CleanUp calls = %d, %d, want 1, 1", ra.cleaned, rb.cleaned)
	}
	if len(s.Root().Children()) != 0 {
		t.Errorf("root children = %d, want 0", len(s.Root().Children()))
	}
}

func TestSceneSaveLoad(t *testing.T) {
	var log []string
	s := NewScene("level")
	s.RegisterComponentFactory(ComponentTypeScript, func(owner *GameObject) Component {
		return newRecorder(owner, "", &log)
	})
	hip := s.CreateGameObject("Hip", nil)
	hip.Transform.SetPosition(math.NewVec3(1, 2, 3))
	foot := s.CreateGameObject("Foot", hip)
	r := newRecorder(foot, "foot-script", &log)
	r.Strength = 0.25
	foot.AddComponent(r)

	node := serialization.NewNode()
	if !s.Save(node) {
		t.Fatal("Save returned false")
	}

	loaded := NewScene("")
	loaded.RegisterComponentFactory(ComponentTypeScript, func(owner *GameObject) Component {
		return newRecorder(owner, "", &log)
	})
	if err := loaded.Load(node); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "level" {
		t.Errorf("Name = %q, want level", loaded.Name)
	}
	gotHip := loaded.FindByName("Hip")
	if gotHip == nil || gotHip.UID != hip.UID {
		t.Fatalf("Hip = %v, want uid %d", gotHip, hip.UID)
	}
	if gotHip.Transform.Position != math.NewVec3(1, 2, 3) {
		t.Errorf("Hip position = %v", gotHip.Transform.Position)
	}
	gotFoot := loaded.FindByName("Foot")
	if gotFoot == nil || gotFoot.Parent() != gotHip {
		t.Fatalf("Foot = %v, want child of Hip", gotFoot)
	}
	rec, ok := GetComponent[*recorder](gotFoot)
	if !ok {
		t.Fatal("Foot lost its component")
	}
	if rec.label != "foot-script" || rec.Strength != 0.25 || rec.UID() != r.UID() {
		t.Errorf("component = %+v, want label foot-script strength 0.25 uid %d", rec, r.UID())
	}
}

func TestComponentTypeNames(t *testing.T) {
	for _, typ := range []ComponentType{ComponentTypeNone, ComponentTypeAnimator, ComponentTypeScript, ComponentTypeCamera} {
		got, ok := ParseComponentType(typ.String())
		if !ok || got != typ {
			t.Errorf("ParseComponentType(%q) = %v, %v", typ.String(), got, ok)
		}
	}
}
