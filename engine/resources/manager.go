package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/spaghettifunk/anima-runtime/engine/animation"
	"github.com/spaghettifunk/anima-runtime/engine/containers"
	"github.com/spaghettifunk/anima-runtime/engine/core"
	"github.com/spaghettifunk/anima-runtime/engine/resources/loaders"
	"github.com/spaghettifunk/anima-runtime/engine/serialization"
	"github.com/spaghettifunk/anima-runtime/engine/systems"
)

// Capacity of the queue between the file watcher and Update. Events past it
// are dropped and logged.
const maxPendingEvents = 256

// Manager owns the loaded animation assets and hands them out by name. All
// methods except the file watcher callback run on the frame thread; worker
// jobs only parse files and pass the results back.
type Manager struct {
	loader loaders.ResourceLoader
	jobs   *systems.JobSystem
	events *core.EventBus

	animations map[string]*animation.Animation
	resources  map[string]Resource

	queueMutex sync.Mutex
	queue      *containers.RingQueue[fileEvent]

	watcher *watcher
}

// NewManager creates a manager. jobs may be nil, in which case directories
// are loaded on the calling goroutine.
func NewManager(jobs *systems.JobSystem) *Manager {
	return &Manager{
		loader:     loaders.AnimationLoader{},
		jobs:       jobs,
		animations: make(map[string]*animation.Animation),
		resources:  make(map[string]Resource),
		queue:      containers.NewRingQueue[fileEvent](maxPendingEvents),
	}
}

// SetEvents makes the manager fire asset events on bus. bus may be nil.
func (m *Manager) SetEvents(bus *core.EventBus) {
	m.events = bus
}

func (m *Manager) fire(code core.EventCode, name, path string) {
	if m.events != nil {
		m.events.Fire(code, m, core.EventContext{Name: name, Path: path})
	}
}

// GetAnimation implements animation.AnimationProvider.
func (m *Manager) GetAnimation(name string) (*animation.Animation, bool) {
	anim, ok := m.animations[name]
	return anim, ok
}

// AddAnimation registers anim under its name. An asset previously
// registered under the same name is marked unloaded.
func (m *Manager) AddAnimation(anim *animation.Animation) {
	m.register(anim, "")
}

func (m *Manager) register(anim *animation.Animation, path string) {
	code := core.EventCodeAssetLoaded
	if old, ok := m.animations[anim.Name]; ok && old != anim {
		old.MarkUnloaded()
		code = core.EventCodeAssetReloaded
	}
	if prev, ok := m.resources[path]; ok && path != "" && prev.Name != anim.Name {
		m.Unload(prev.Name)
	}
	m.animations[anim.Name] = anim
	if path != "" {
		m.resources[path] = Resource{
			UID:      anim.UID,
			Name:     anim.Name,
			FullPath: path,
			Type:     ResourceTypeAnimation,
			LoadedAt: time.Now(),
		}
	}
	core.LogDebug("animation '%s' registered (%d channels)", anim.Name, anim.ChannelCount())
	m.fire(code, anim.Name, path)
}

// Unload drops the animation registered as name. Animators still holding it
// release it on their next update.
func (m *Manager) Unload(name string) bool {
	anim, ok := m.animations[name]
	if !ok {
		return false
	}
	anim.MarkUnloaded()
	delete(m.animations, name)
	var path string
	for p, r := range m.resources {
		if r.Name == name {
			path = p
			delete(m.resources, p)
		}
	}
	core.LogDebug("animation '%s' unloaded", name)
	m.fire(core.EventCodeAssetRemoved, name, path)
	return true
}

// Animations returns the registered names in order.
func (m *Manager) Animations() []string {
	names := make([]string, 0, len(m.animations))
	for name := range m.animations {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m *Manager) Resource(path string) (Resource, bool) {
	r, ok := m.resources[path]
	return r, ok
}

// LoadAnimation loads and registers a single animation file.
func (m *Manager) LoadAnimation(path string) (*animation.Animation, error) {
	anim, err := m.loader.Load(path)
	if err != nil {
		return nil, err
	}
	m.register(anim, path)
	return anim, nil
}

type loadResult struct {
	path string
	anim *animation.Animation
}

// LoadDirectory loads every animation file under dir, parsing them in
// parallel on the job system. Files that fail to load are logged and
// reported in the returned error; the others are registered regardless.
func (m *Manager) LoadDirectory(dir string) (int, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == m.loader.Extension() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking '%s': %w", dir, err)
	}

	var (
		mutex   sync.Mutex
		wg      sync.WaitGroup
		results []loadResult
		errs    []error
	)
	fail := func(path string, err error) {
		mutex.Lock()
		defer mutex.Unlock()
		errs = append(errs, err)
		core.LogWarn("could not load '%s': %s", path, err)
	}

	for _, path := range paths {
		if m.jobs == nil {
			anim, err := m.loader.Load(path)
			if err != nil {
				fail(path, err)
				continue
			}
			results = append(results, loadResult{path: path, anim: anim})
			continue
		}
		wg.Add(1)
		err := m.jobs.Submit(systems.JobTask{
			Name:    "load " + path,
			OnStart: func() (any, error) { return m.loader.Load(path) },
			OnComplete: func(result any) {
				mutex.Lock()
				defer mutex.Unlock()
				results = append(results, loadResult{path: path, anim: result.(*animation.Animation)})
			},
			OnFailure:            func(err error) { fail(path, err) },
			OnCompletionCallback: wg.Done,
		})
		if err != nil {
			wg.Done()
			fail(path, err)
		}
	}
	wg.Wait()

	slices.SortFunc(results, func(a, b loadResult) int {
		switch {
		case a.path < b.path:
			return -1
		case a.path > b.path:
			return 1
		}
		return 0
	})
	for _, r := range results {
		m.register(r.anim, r.path)
	}
	core.LogInfo("loaded %d animations from '%s'", len(results), dir)
	return len(results), errors.Join(errs...)
}

// LoadScene reads a saved scene, choosing the codec from the extension.
func (m *Manager) LoadScene(path string) (*serialization.Node, error) {
	format, err := serialization.FormatFromExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	node, err := serialization.Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return node, nil
}

// SaveScene writes node to path, choosing the codec from the extension.
func (m *Manager) SaveScene(path string, node *serialization.Node) error {
	format, err := serialization.FormatFromExtension(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := serialization.Encode(f, node, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Watch reloads animation files under dir when they change on disk. Changes
// are queued and applied by Update.
func (m *Manager) Watch(dir string) error {
	if m.watcher != nil {
		return m.watcher.addRecursive(dir, false)
	}
	w, err := newWatcher(m.enqueue)
	if err != nil {
		return err
	}
	if err := w.addRecursive(dir, false); err != nil {
		w.close()
		return err
	}
	w.start()
	m.watcher = w
	core.LogInfo("watching '%s' for asset changes", dir)
	return nil
}

func (m *Manager) enqueue(ev fileEvent) {
	m.queueMutex.Lock()
	defer m.queueMutex.Unlock()
	if err := m.queue.Enqueue(ev); err != nil {
		core.LogWarn("asset change for '%s' dropped: %s", ev.path, err)
	}
}

func (m *Manager) drain() []fileEvent {
	m.queueMutex.Lock()
	defer m.queueMutex.Unlock()
	events := make([]fileEvent, 0, m.queue.Len())
	for !m.queue.IsEmpty() {
		ev, _ := m.queue.Dequeue()
		// an editor save usually produces several writes; keep the last
		if i := slices.IndexFunc(events, func(e fileEvent) bool { return e.path == ev.path }); i >= 0 {
			events = slices.Delete(events, i, i+1)
		}
		events = append(events, ev)
	}
	return events
}

// Update applies queued file changes. It returns how many were applied.
func (m *Manager) Update() int {
	applied := 0
	for _, ev := range m.drain() {
		if ev.removed {
			if r, ok := m.resources[ev.path]; ok && m.Unload(r.Name) {
				applied++
			}
			continue
		}
		if determineResourceType(ev.path) != ResourceTypeAnimation {
			continue
		}
		if _, err := m.LoadAnimation(ev.path); err != nil {
			core.LogWarn("reload of '%s' failed, keeping the previous version: %s", ev.path, err)
			continue
		}
		core.LogInfo("reloaded '%s'", ev.path)
		applied++
	}
	return applied
}

// Shutdown stops watching and unloads every asset.
func (m *Manager) Shutdown() {
	if m.watcher != nil {
		if err := m.watcher.close(); err != nil {
			core.LogWarn("closing asset watcher: %s", err)
		}
		m.watcher = nil
	}
	for _, name := range m.Animations() {
		m.Unload(name)
	}
}
