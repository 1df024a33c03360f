package watch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/moqsien/sxnet/utils/errs"
)

type portableEntry struct {
	events Events
	cb     Callback
}

type portableWatcher struct {
	lock    sync.Mutex
	w       *fsnotify.Watcher
	entries map[string]*portableEntry
	closed  bool
}

// NewPortable returns a watcher backed by fsnotify.
func NewPortable() (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	return &portableWatcher{w: w, entries: make(map[string]*portableEntry)}, nil
}

func fromOp(op fsnotify.Op) (ev Events) {
	if op.Has(fsnotify.Write) {
		ev |= Written | SizeChanged
	}
	if op.Has(fsnotify.Chmod) {
		ev |= PermissionChanged | Linked
	}
	if op.Has(fsnotify.Remove) {
		ev |= Deleted
	}
	if op.Has(fsnotify.Rename) {
		ev |= Renamed
	}
	return
}

func (that *portableWatcher) Monitor(path string, events Events, cb Callback) error {
	path = filepath.Clean(path)
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return errs.ErrWatcherClosed
	}
	if _, ok := that.entries[path]; !ok {
		if err := that.w.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
	}
	that.entries[path] = &portableEntry{events: events, cb: cb}
	return nil
}

func (that *portableWatcher) Remove(path string) error {
	path = filepath.Clean(path)
	that.lock.Lock()
	defer that.lock.Unlock()
	if _, ok := that.entries[path]; !ok {
		return errors.Wrap(errs.ErrNotWatched, path)
	}
	delete(that.entries, path)
	return that.w.Remove(path)
}

func (that *portableWatcher) dispatch(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	that.lock.Lock()
	e, ok := that.entries[path]
	that.lock.Unlock()
	if !ok {
		return
	}
	ev := fromOp(event.Op) & e.events
	if ev == 0 {
		return
	}
	gone := event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
	if e.cb(path, ev) || gone {
		that.lock.Lock()
		if cur, ok := that.entries[path]; ok && cur == e {
			delete(that.entries, path)
			_ = that.w.Remove(path)
		}
		that.lock.Unlock()
	}
}

func (that *portableWatcher) Run() error {
	for {
		select {
		case event, ok := <-that.w.Events:
			if !ok {
				return nil
			}
			that.dispatch(event)
		case err, ok := <-that.w.Errors:
			if !ok {
				return nil
			}
			_ = doWatchErr(err)
		}
	}
}

func (that *portableWatcher) Close() error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return nil
	}
	that.closed = true
	return that.w.Close()
}
