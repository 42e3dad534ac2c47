// Package pathwatch provides file system change notifications.
package pathwatch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// A Watcher keeps track of a set of paths and sends notifications on user-provided
// channels whenever the file or directory at one of them changes in any way.
// The specific nature of the change is not reported; it is up to the user to determine
// what happened.
//
// Watching is done through the OS notification facility where possible. Each
// watched file's parent directory is registered, not the file itself, so that
// atomic-rename saves and create/delete cycles are still observed. Paths whose
// parent directory doesn't exist (yet) are polled until it does.
//
// Any errors that the Watcher encounters while monitoring the paths are delivered on the
// channel returned by Errors.
type Watcher struct {
	fsw     *fsnotify.Watcher
	files   map[string]*watchedFile
	dirs    map[string]int // refcount of directories registered with fsw
	errors  chan error
	control chan func()
}

type watchedFile struct {
	lastInfo  os.FileInfo
	observers []chan<- struct{}
	dir       string // parent directory registered with fsw; "" while polling
}

// NewWatcher starts a new watcher.
// When no longer in use, the user should call Close to release resources associated with it.
func NewWatcher() *Watcher {
	w := &Watcher{
		files:   map[string]*watchedFile{},
		dirs:    map[string]int{},
		errors:  make(chan error, 10),
		control: make(chan func(), 10),
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		// Degrade to pure polling.
		w.errors <- err
	} else {
		w.fsw = fsw
	}
	go w.run()
	return w
}

// Normally we don't want a notification when we add a file, since it's redundant,
// but for testing we need it in order to be able to reliably detect modifications without
// races.
var notifyOnAdd = false

// Add begins sending change notifications for a path on the given channel.
// Multiple calls to Add for the same path, but different channels, are permitted;
// in that case, the notifications will be sent on all of them.
func (w *Watcher) Add(path string, ch chan<- struct{}) {
	path = filepath.Clean(path)
	w.control <- func() {
		wf, ok := w.files[path]
		if !ok {
			info, err := os.Stat(path)
			if err != nil && !os.IsNotExist(err) {
				w.errors <- err
			}
			wf = &watchedFile{lastInfo: info}
			w.files[path] = wf
			w.armDirWatch(path, wf)
		}
		wf.observers = append(wf.observers, ch)
		if notifyOnAdd {
			ch <- struct{}{}
		}
	}
}

// Remove stops sending change notifications for a path on the given channel.
// It does not cancel other calls to Add made for the same path, but different
// channels.
func (w *Watcher) Remove(path string, ch chan<- struct{}) {
	path = filepath.Clean(path)
	w.control <- func() {
		wf, ok := w.files[path]
		if !ok {
			return
		}
		for i, ob := range wf.observers {
			if ob != ch {
				continue
			}
			if len(wf.observers) == 1 {
				delete(w.files, path)
				w.disarmDirWatch(wf)
			} else {
				n := len(wf.observers) - 1
				wf.observers[i] = wf.observers[n]
				wf.observers = wf.observers[:n]
			}
			return
		}
	}
}

// Errors returns a channel on which the Watcher delivers errors it encounters.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops delivering change notifications for any paths and releases all resources
// associated with the watcher.
func (w *Watcher) Close() { w.control <- nil }

// armDirWatch registers the path's parent directory with the OS watcher.
// If that fails (typically because the directory doesn't exist yet), the file
// stays in polling mode until a later tick can arm it.
func (w *Watcher) armDirWatch(path string, wf *watchedFile) {
	if w.fsw == nil {
		return
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] > 0 {
		w.dirs[dir]++
		wf.dir = dir
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		wf.dir = ""
		return
	}
	w.dirs[dir]++
	wf.dir = dir
}

func (w *Watcher) disarmDirWatch(wf *watchedFile) {
	if wf.dir == "" {
		return
	}
	dir := wf.dir
	wf.dir = ""
	if w.dirs[dir]--; w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if w.fsw != nil {
			w.fsw.Remove(dir)
		}
	}
}

// dropDirWatch marks every file under dir as polling after the OS watch on
// dir has become invalid (the directory was removed or renamed away).
func (w *Watcher) dropDirWatch(dir string) {
	if w.dirs[dir] == 0 {
		return
	}
	delete(w.dirs, dir)
	for _, wf := range w.files {
		if wf.dir == dir {
			wf.dir = ""
		}
	}
}

func (w *Watcher) run() {
	var events <-chan fsnotify.Event
	var fswErrors <-chan error
	if w.fsw != nil {
		events = w.fsw.Events
		fswErrors = w.fsw.Errors
		defer w.fsw.Close()
	}
	tick := time.NewTicker(time.Second / 8)
	defer tick.Stop()
	for {
		select {
		case ev := <-events:
			p := filepath.Clean(ev.Name)
			if wf, ok := w.files[p]; ok {
				w.recheck(p, wf)
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// A watched parent directory may have gone away.
				w.dropDirWatch(p)
				for path, wf := range w.files {
					if filepath.Dir(path) == p {
						w.recheck(path, wf)
					}
				}
			}
		case err := <-fswErrors:
			if err != nil {
				w.errors <- err
			}
		case <-tick.C:
			// Poll the files without an active directory watch, and try to
			// promote them now that their directory may exist.
			for path, wf := range w.files {
				if wf.dir != "" {
					continue
				}
				w.recheck(path, wf)
				w.armDirWatch(path, wf)
			}
		case f := <-w.control:
			if f == nil {
				return
			}
			f()
		}
	}
}

// recheck stats the path and notifies the file's observers if it has changed
// since the last look.
func (w *Watcher) recheck(path string, wf *watchedFile) {
	info, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		w.errors <- err
		return
	}
	if !fileInfoEqual(wf.lastInfo, info) {
		for _, ob := range wf.observers {
			ob <- struct{}{}
		}
		wf.lastInfo = info
	}
}

func fileInfoEqual(a, b os.FileInfo) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.ModTime().Equal(b.ModTime()) && a.Size() == b.Size()
}
