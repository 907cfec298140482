package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadQuiet coalesces editor write bursts into one reload.
const reloadQuiet = 200 * time.Millisecond

// ReloadFunc is called with the freshly loaded configuration after the
// watched file changes. Load errors are passed through err with the previous
// configuration retained in cfg.
type ReloadFunc func(cfg Config, err error)

// Watcher reloads a configuration file when it changes on disk.
type Watcher struct {
	mu       sync.Mutex
	path     string
	fsw      *fsnotify.Watcher
	onReload ReloadFunc
	current  Config
	timer    *time.Timer
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher starts watching path. The initial configuration must already be
// loaded by the caller; the watcher only reports subsequent changes.
func NewWatcher(path string, initial Config, onReload ReloadFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors often replace the file via rename, which
	// drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     path,
		fsw:      fsw,
		onReload: onReload,
		current:  initial,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// scheduleReload re-arms the quiet-period timer so a burst of writes causes
// one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(reloadQuiet, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if err != nil {
		cfg = w.current
	} else {
		w.current = cfg
	}
	fn := w.onReload
	w.mu.Unlock()

	if fn != nil {
		fn(cfg, err)
	}
}
