package glshader

import (
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads library programs when their source files change.
//
// File events are collected on a background goroutine, which only marks
// programs dirty. Reloading touches the driver, so it happens in Poll,
// which must be called from the goroutine that owns the graphics context
// (typically once per frame).
type Watcher struct {
	lib *Library
	fsw *fsnotify.Watcher
	log *slog.Logger

	mu    sync.Mutex
	dirty map[string]bool

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewWatcher starts watching the source directories of every program in lib.
func NewWatcher(lib *Library) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Editors often replace files instead of writing them, so watch the
	// directories rather than the files.
	for _, dir := range lib.sourceDirs() {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		lib:   lib,
		fsw:   fsw,
		log:   logger,
		dirty: make(map[string]bool),
		done:  make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("shader watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	names := w.lib.programsUsing(filepath.Clean(ev.Name))
	if len(names) == 0 {
		return
	}

	w.mu.Lock()
	for _, name := range names {
		w.dirty[name] = true
	}
	w.mu.Unlock()
	w.log.Debug("shader source changed", "file", ev.Name, "programs", names)
}

// Dirty returns the sorted names of programs waiting for a reload.
func (w *Watcher) Dirty() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.dirty))
	for name := range w.dirty {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Poll reloads every dirty program and returns the joined reload errors.
// Programs that fail to reload keep their previous version and are not
// retried until their sources change again.
func (w *Watcher) Poll() error {
	w.mu.Lock()
	names := make([]string, 0, len(w.dirty))
	for name := range w.dirty {
		names = append(names, name)
	}
	clear(w.dirty)
	w.mu.Unlock()
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if err := w.lib.Reload(name); err != nil {
			w.log.Warn("shader reload failed", "program", name, "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops watching. Later calls return the result of the first.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.fsw.Close()
		w.wg.Wait()
	})
	return w.closeErr
}
