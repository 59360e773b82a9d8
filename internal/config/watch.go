package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reports config, scene and script files that changed on disk.
// A path is reported once its events have been quiet for the debounce
// window, so a truncate followed by a write yields one event carrying the
// final contents.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

type settled struct {
	path string
	gen  uint64
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
	// pending holds the latest event generation per path; a timer whose
	// generation is no longer current was superseded.
	pending := make(map[string]uint64)
	var gen uint64
	fired := make(chan settled)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsWatchedFile(event.Name) {
				continue
			}
			gen++
			s := settled{path: event.Name, gen: gen}
			pending[s.path] = s.gen
			time.AfterFunc(reloadDebounce, func() {
				select {
				case fired <- s:
				case <-w.closeCh:
				}
			})
		case s := <-fired:
			if pending[s.path] != s.gen {
				continue
			}
			delete(pending, s.path)
			select {
			case w.Events <- s.path:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// IsWatchedFile reports whether path has an extension the engine reloads.
func IsWatchedFile(path string) bool {
	return IsConfigFile(path) || IsSceneFile(path) || IsScriptFile(path)
}

func IsConfigFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".toml"
}

func IsSceneFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func IsScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".lua"
}
