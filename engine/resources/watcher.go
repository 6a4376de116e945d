package resources

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/anima-runtime/engine/core"
)

type fileEvent struct {
	path    string
	removed bool
}

// watcher forwards file changes under a directory tree. It runs on its own
// goroutine and never touches loaded assets; onEvent must be safe to call
// from there.
type watcher struct {
	fsnotify *fsnotify.Watcher
	onEvent  func(fileEvent)

	mutex    sync.Mutex
	isClosed bool
	done     chan struct{}
	wg       sync.WaitGroup
}

func newWatcher(onEvent func(fileEvent)) (*watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fsnotify: fsWatch,
		onEvent:  onEvent,
		done:     make(chan struct{}),
	}, nil
}

func (w *watcher) start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case e, ok := <-w.fsnotify.Events:
				if !ok {
					return
				}
				w.handle(e)
			case err, ok := <-w.fsnotify.Errors:
				if !ok {
					return
				}
				core.LogError("asset watcher: %s", err)
			case <-w.done:
				return
			}
		}
	}()
}

func (w *watcher) handle(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			// files created before the watch was added are picked up by the walk
			if err := w.addRecursive(e.Name, true); err != nil {
				core.LogWarn("asset watcher: cannot watch '%s': %s", e.Name, err)
			}
			return
		}
	}
	if determineResourceType(e.Name) == ResourceTypeNone {
		return
	}
	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.onEvent(fileEvent{path: e.Name})
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.onEvent(fileEvent{path: e.Name, removed: true})
	}
}

// addRecursive watches root and every directory below it. With report set,
// files already present are forwarded as created.
func (w *watcher) addRecursive(root string, report bool) error {
	w.mutex.Lock()
	closed := w.isClosed
	w.mutex.Unlock()
	if closed {
		return errors.New("asset watcher already closed")
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsnotify.Add(path)
		}
		if report && determineResourceType(path) != ResourceTypeNone {
			w.onEvent(fileEvent{path: path})
		}
		return nil
	})
}

func (w *watcher) close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	return err
}
