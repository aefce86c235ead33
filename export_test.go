package glshader

import "github.com/fsnotify/fsnotify"

// Notify feeds ev to the watcher as if fsnotify had delivered it.
func (w *Watcher) Notify(ev fsnotify.Event) { w.handle(ev) }
