package scene

import (
	"testing"

	"github.com/spaghettifunk/anima-runtime/engine/math"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
)

func TestFindChildSkipsSelf(t *testing.T) {
	s := NewScene("find")
	a := s.CreateGameObject("Bone", nil)
	b := s.CreateGameObject("Arm", a)
	c := s.CreateGameObject("Bone", b)

	if got := a.FindChild("Bone"); got != c {
		t.Errorf("FindChild(Bone) = %v, want the nested Bone", got)
	}
	if got := c.FindChild("Bone"); got != nil {
		t.Errorf("FindChild on a leaf = %v, want nil", got)
	}
}

func TestCameraVisibility(t *testing.T) {
	s := NewScene("view")
	eye := s.CreateGameObject("Eye", nil)
	camera := NewCamera(eye)
	eye.AddComponent(camera)

	ahead := s.CreateGameObject("Ahead", nil)
	ahead.Transform.SetPosition(math.NewVec3(0, 0, -10))
	behind := s.CreateGameObject("Behind", nil)
	behind.Transform.SetPosition(math.NewVec3(0, 0, 10))
	aside := s.CreateGameObject("Aside", nil)
	aside.Transform.SetPosition(math.NewVec3(10, 0, -1))
	far := s.CreateGameObject("Far", nil)
	far.Transform.SetPosition(math.NewVec3(0, 0, -2000))

	tests := map[*GameObject]bool{ahead: true, behind: false, aside: false, far: false}
	for g, want := range tests {
		if got := camera.IsVisible(g); got != want {
			t.Errorf("IsVisible(%s) = %v, want %v", g.Name, got, want)
		}
		if got := s.IsVisible(g); got != want {
			t.Errorf("scene IsVisible(%s) = %v, want %v", g.Name, got, want)
		}
	}

	camera.SetActive(false)
	if !s.IsVisible(behind) {
		t.Error("a scene without active cameras must not cull")
	}
}

func TestCameraStateRoundTrip(t *testing.T) {
	s := NewScene("saved")
	eye := s.CreateGameObject("Eye", nil)
	camera := NewCamera(eye)
	camera.Far = 50
	eye.AddComponent(camera)

	node := serialization.NewNode()
	if !s.Save(node) {
		t.Fatal("Save() = false")
	}
	loaded := NewScene("loaded")
	if err := loaded.Load(node); err != nil {
		t.Fatalf("Load: %s", err)
	}
	cameras := loaded.Cameras()
	if len(cameras) != 1 {
		t.Fatalf("cameras = %d, want 1", len(cameras))
	}
	if cameras[0].Far != 50 || cameras[0].Near != camera.Near {
		t.Errorf("loaded camera near %v far %v", cameras[0].Near, cameras[0].Far)
	}

	bad := NewCamera(eye)
	state := serialization.NewNode()
	state.SetNumber("field_of_view", 60)
	state.SetNumber("near", 10)
	state.SetNumber("far", 1)
	if bad.LoadState(state) {
		t.Error("LoadState accepted far before near")
	}
}
