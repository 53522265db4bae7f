// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It watches individual pattern files through their parent directories (so that
// editors which save by rename are still seen), filters out editor noise, and
// debounces bursts of events: onChange fires once a file has been quiet for the
// debounce interval.
package fsnotify

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corey/acmatch/internal/ports"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when NewWatcher is given zero.
const DefaultDebounce = 100 * time.Millisecond

// File suffixes editors write next to the real file.
var ignoreSuffixes = []string{".swp", ".swx", "~", ".tmp", ".DS_Store"}

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	loop     sync.WaitGroup
	inflight sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	files   map[string]bool
	pending map[string]*time.Timer
}

var _ ports.Watcher = (*Watcher)(nil)

// NewWatcher creates a new file watcher. A non-positive debounce selects
// DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fw:       fw,
		debounce: debounce,
		done:     make(chan struct{}),
		files:    make(map[string]bool),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Watch starts monitoring the given files. onChange is called with the
// absolute path of each changed file, from a timer goroutine. onChange must
// not call Stop.
func (w *Watcher) Watch(paths []string, onChange func(filePath string)) error {
	dirs := make(map[string]bool)
	w.mu.Lock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			w.mu.Unlock()
			return err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	w.mu.Unlock()

	for dir := range dirs {
		if err := w.fw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.loop.Add(1)
	go func() {
		defer w.loop.Done()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				w.handle(event, onChange)

			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed: fsnotify recovers automatically

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

func (w *Watcher) handle(event fsnotify.Event, onChange func(string)) {
	if !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		return
	}
	path := filepath.Clean(event.Name)
	if shouldIgnorePath(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || !w.files[path] {
		return
	}

	// Trailing debounce: every event pushes the deadline back.
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.inflight.Add(1)
		w.mu.Unlock()

		defer w.inflight.Done()
		onChange(path)
	})
}

// Stop ends monitoring and releases all resources. After Stop returns no
// further onChange calls fire. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.loop.Wait()
	w.inflight.Wait()
	return err
}

// shouldIgnorePath returns true for editor swap and backup files.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}
