//go:build darwin || freebsd

package watch

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/errs"
)

type watchEntry struct {
	path   string
	fd     int
	events Events
	cb     Callback
}

type kqueueWatcher struct {
	lock    sync.Mutex
	pollFd  int
	byFd    map[int]*watchEntry
	byPath  map[string]*watchEntry
	running bool
	closed  bool
}

// New returns a watcher backed by kqueue vnode filters.
func New() (Watcher, error) {
	pollFd, _, err := sys.CreatePoll()
	if err != nil {
		return nil, err
	}
	return &kqueueWatcher{
		pollFd: pollFd,
		byFd:   make(map[int]*watchEntry),
		byPath: make(map[string]*watchEntry),
	}, nil
}

var noteEvents = []struct {
	note uint32
	ev   Events
}{
	{unix.NOTE_DELETE, Deleted},
	{unix.NOTE_WRITE, Written},
	{unix.NOTE_EXTEND, SizeChanged},
	{unix.NOTE_ATTRIB, PermissionChanged},
	{unix.NOTE_LINK, Linked},
	{unix.NOTE_RENAME, Renamed},
	{unix.NOTE_REVOKE, Revoked},
}

func toNotes(ev Events) (fflags uint32) {
	for _, n := range noteEvents {
		if ev&n.ev != 0 {
			fflags |= n.note
		}
	}
	return
}

func fromNotes(fflags uint32) (ev Events) {
	for _, n := range noteEvents {
		if fflags&n.note != 0 {
			ev |= n.ev
		}
	}
	return
}

func (that *kqueueWatcher) Monitor(path string, events Events, cb Callback) error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return errs.ErrWatcherClosed
	}
	fd, err := sys.AddVnode(that.pollFd, path, toNotes(events))
	if err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	if old, ok := that.byPath[path]; ok {
		that.drop(old)
	}
	e := &watchEntry{path: path, fd: fd, events: events, cb: cb}
	that.byFd[fd] = e
	that.byPath[path] = e
	return nil
}

func (that *kqueueWatcher) drop(e *watchEntry) {
	delete(that.byFd, e.fd)
	if cur, ok := that.byPath[e.path]; ok && cur == e {
		delete(that.byPath, e.path)
	}
	_ = sys.DelVnode(that.pollFd, e.fd)
}

func (that *kqueueWatcher) Remove(path string) error {
	that.lock.Lock()
	defer that.lock.Unlock()
	e, ok := that.byPath[path]
	if !ok {
		return errors.Wrap(errs.ErrNotWatched, path)
	}
	that.drop(e)
	return nil
}

func (that *kqueueWatcher) onEvent(fd int, events uint32) error {
	if events&sys.VnodeEvents == 0 {
		return nil
	}
	that.lock.Lock()
	e, ok := that.byFd[fd]
	that.lock.Unlock()
	if !ok {
		return nil
	}
	ev := fromNotes(events&^sys.VnodeEvents) & e.events
	if ev == 0 {
		return nil
	}
	if e.cb(e.path, ev) || ev&(Deleted|Revoked) != 0 {
		that.lock.Lock()
		if cur, ok := that.byFd[fd]; ok && cur == e {
			that.drop(e)
		}
		that.lock.Unlock()
	}
	return nil
}

func (that *kqueueWatcher) onTrigger() error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return errs.ErrWatcherClosed
	}
	return nil
}

func (that *kqueueWatcher) Run() error {
	that.lock.Lock()
	if that.closed {
		that.lock.Unlock()
		return errs.ErrWatcherClosed
	}
	that.running = true
	that.lock.Unlock()

	err := sys.WaitPoll(that.pollFd, that.pollFd, that.onEvent, that.onTrigger, doWatchErr)
	that.release()
	if err == errs.ErrWatcherClosed {
		err = nil
	}
	return err
}

func (that *kqueueWatcher) release() {
	that.lock.Lock()
	for _, e := range that.byFd {
		unix.Close(e.fd)
	}
	that.byFd = map[int]*watchEntry{}
	that.byPath = map[string]*watchEntry{}
	that.lock.Unlock()
	unix.Close(that.pollFd)
}

func (that *kqueueWatcher) Close() error {
	that.lock.Lock()
	if that.closed {
		that.lock.Unlock()
		return nil
	}
	that.closed = true
	running := that.running
	that.lock.Unlock()
	if running {
		return sys.Trigger(that.pollFd, that.pollFd)
	}
	that.release()
	return nil
}
