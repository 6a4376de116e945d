package resources

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
	"github.com/spaghettifunk/anima-runtime/engine/systems"
)

func writeAnim(t *testing.T, dir, file, name string, duration float64) string {
	t.Helper()
	path := filepath.Join(dir, file)
	data := "name = \"" + name + "\"\nduration = " + strconv.FormatFloat(duration, 'f', 1, 64) + "\nticks_per_second = 10.0\n" +
		"[[channels]]\nname = \"Hip\"\nposition_keys = [{ time = 0.0, value = [0.0, 1.0, 0.0] }]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAddReplaceAndUnload(t *testing.T) {
	m := NewManager(nil)
	first, _ := animation.NewAnimation("Walk", 10, 10, nil)
	second, _ := animation.NewAnimation("Walk", 12, 10, nil)

	m.AddAnimation(first)
	if got, ok := m.GetAnimation("Walk"); !ok || got != first {
		t.Fatal("GetAnimation did not return the added asset")
	}
	m.AddAnimation(second)
	if !first.IsUnloaded() {
		t.Error("replaced asset not marked unloaded")
	}
	if got, _ := m.GetAnimation("Walk"); got != second {
		t.Error("replacement not served")
	}

	if !m.Unload("Walk") || !second.IsUnloaded() {
		t.Error("Unload did not mark the asset")
	}
	if m.Unload("Walk") {
		t.Error("second Unload() = true")
	}
	if _, ok := m.GetAnimation("Walk"); ok {
		t.Error("unloaded asset still served")
	}
}

func TestLoadDirectory(t *testing.T) {
	for _, workers := range []int{0, 3} {
		dir := t.TempDir()
		sub := filepath.Join(dir, "locomotion")
		if err := os.Mkdir(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		writeAnim(t, dir, "idle.anim", "Idle", 8)
		writeAnim(t, sub, "walk.anim", "Walk", 20)
		writeAnim(t, sub, "run.anim", "Run", 10)
		if err := os.WriteFile(filepath.Join(sub, "broken.anim"), []byte("duration = ="), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
			t.Fatal(err)
		}

		var jobs *systems.JobSystem
		if workers > 0 {
			js, err := systems.NewJobSystem(workers, 4)
			if err != nil {
				t.Fatal(err)
			}
			defer js.Shutdown()
			jobs = js
		}
		m := NewManager(jobs)
		n, err := m.LoadDirectory(dir)
		if n != 3 {
			t.Errorf("workers %d: loaded %d, want 3", workers, n)
		}
		if err == nil {
			t.Errorf("workers %d: broken file not reported", workers)
		}
		names := m.Animations()
		want := []string{"Idle", "Run", "Walk"}
		if len(names) != len(want) {
			t.Fatalf("workers %d: names = %v, want %v", workers, names, want)
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("workers %d: names = %v, want %v", workers, names, want)
			}
		}
		r, ok := m.Resource(filepath.Join(sub, "walk.anim"))
		if !ok || r.Name != "Walk" || r.Type != ResourceTypeAnimation {
			t.Errorf("workers %d: resource = %+v", workers, r)
		}
	}
}

func TestManagerFiresAssetEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeAnim(t, dir, "walk.anim", "Walk", 20)
	m := NewManager(nil)
	bus := core.NewEventBus()
	m.SetEvents(bus)

	var got []core.EventCode
	record := func(code core.EventCode, sender any, listener any, data core.EventContext) bool {
		if data.Name != "Walk" || data.Path != path {
			t.Errorf("event %d context = %+v", code, data)
		}
		got = append(got, code)
		return false
	}
	for _, code := range []core.EventCode{core.EventCodeAssetLoaded, core.EventCodeAssetReloaded, core.EventCodeAssetRemoved} {
		bus.Register(code, t, record)
	}

	if _, err := m.LoadAnimation(path); err != nil {
		t.Fatal(err)
	}
	if _, err := m.LoadAnimation(path); err != nil {
		t.Fatal(err)
	}
	m.Unload("Walk")

	want := []core.EventCode{core.EventCodeAssetLoaded, core.EventCodeAssetReloaded, core.EventCodeAssetRemoved}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestUpdateAppliesQueuedChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeAnim(t, dir, "walk.anim", "Walk", 20)
	m := NewManager(nil)
	old, err := m.LoadAnimation(path)
	if err != nil {
		t.Fatalf("LoadAnimation: %s", err)
	}

	writeAnim(t, dir, "walk.anim", "Walk", 30)
	m.enqueue(fileEvent{path: path})
	m.enqueue(fileEvent{path: path})
	if applied := m.Update(); applied != 1 {
		t.Errorf("applied = %d, want 1 for duplicate events", applied)
	}
	fresh, ok := m.GetAnimation("Walk")
	if !ok || fresh == old || fresh.Duration != 30 || !old.IsUnloaded() {
		t.Fatalf("reload not applied: fresh %v old unloaded %v", fresh, old.IsUnloaded())
	}

	if err := os.WriteFile(path, []byte("duration = ="), 0o644); err != nil {
		t.Fatal(err)
	}
	m.enqueue(fileEvent{path: path})
	m.Update()
	if got, _ := m.GetAnimation("Walk"); got != fresh || fresh.IsUnloaded() {
		t.Error("broken reload replaced the working asset")
	}

	m.enqueue(fileEvent{path: path, removed: true})
	m.Update()
	if _, ok := m.GetAnimation("Walk"); ok || !fresh.IsUnloaded() {
		t.Error("removed file still loaded")
	}
}

func TestWatchReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeAnim(t, dir, "walk.anim", "Walk", 20)
	m := NewManager(nil)
	if _, err := m.LoadDirectory(dir); err != nil {
		t.Fatalf("LoadDirectory: %s", err)
	}
	if err := m.Watch(dir); err != nil {
		t.Skipf("file watching unavailable: %s", err)
	}
	defer m.Shutdown()

	writeAnim(t, dir, "walk.anim", "Walk", 40)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		m.Update()
		if anim, ok := m.GetAnimation("Walk"); ok && anim.Duration == 40 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("change to %s not picked up", path)
}

func TestSceneFiles(t *testing.T) {
	m := NewManager(nil)
	node := serialization.NewNode()
	node.SetString("name", "Level")
	node.SetNode("root").SetString("name", "Scene Root")

	for _, file := range []string{"level.json", "level.toml"} {
		path := filepath.Join(t.TempDir(), file)
		if err := m.SaveScene(path, node); err != nil {
			t.Fatalf("SaveScene(%s): %s", file, err)
		}
		loaded, err := m.LoadScene(path)
		if err != nil {
			t.Fatalf("LoadScene(%s): %s", file, err)
		}
		if name, _ := loaded.GetString("name"); name != "Level" {
			t.Errorf("%s: name = %q", file, name)
		}
	}
	if _, err := m.LoadScene(filepath.Join(t.TempDir(), "level.yaml")); err == nil {
		t.Error("LoadScene accepted an unknown extension")
	}
}

func TestDetermineResourceType(t *testing.T) {
	tests := map[string]ResourceType{
		"walk.anim":  ResourceTypeAnimation,
		"level.json": ResourceTypeScene,
		"level.toml": ResourceTypeScene,
		"notes.txt":  ResourceTypeNone,
	}
	for path, want := range tests {
		if got := determineResourceType(path); got != want {
			t.Errorf("determineResourceType(%s) = %s, want %s", path, got, want)
		}
	}
}
