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
	wd     int
	events Events
	cb     Callback
}

type inotifyWatcher struct {
	lock     sync.Mutex
	fd       int
	pollFd   int
	pollEvFd int
	byWd     map[int]*watchEntry
	byPath   map[string]*watchEntry
	running  bool
	closed   bool
	buf      []byte
}

// New returns a watcher backed by inotify.
func New() (Watcher, error) {
	fd, err := sys.InotifyInit()
	if err != nil {
		return nil, err
	}
	pollFd, pollEvFd, err := sys.CreatePoll()
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err = sys.AddRead(pollFd, fd); err != nil {
		unix.Close(fd)
		unix.Close(pollFd)
		unix.Close(pollEvFd)
		return nil, err
	}
	return &inotifyWatcher{
		fd:       fd,
		pollFd:   pollFd,
		pollEvFd: pollEvFd,
		byWd:     make(map[int]*watchEntry),
		byPath:   make(map[string]*watchEntry),
		buf:      make([]byte, 64<<10),
	}, nil
}

// toMask always carries IN_UNMOUNT, the kernel rejects an empty mask.
func toMask(ev Events) (mask uint32) {
	mask = unix.IN_UNMOUNT
	if ev&(Written|SizeChanged) != 0 {
		mask |= unix.IN_MODIFY
	}
	if ev&(PermissionChanged|Linked) != 0 {
		mask |= unix.IN_ATTRIB
	}
	if ev&Deleted != 0 {
		mask |= unix.IN_DELETE_SELF
	}
	if ev&Renamed != 0 {
		mask |= unix.IN_MOVE_SELF
	}
	return
}

func fromMask(mask uint32) (ev Events) {
	if mask&unix.IN_MODIFY != 0 {
		ev |= Written | SizeChanged
	}
	if mask&unix.IN_ATTRIB != 0 {
		ev |= PermissionChanged | Linked
	}
	if mask&unix.IN_DELETE_SELF != 0 {
		ev |= Deleted
	}
	if mask&unix.IN_MOVE_SELF != 0 {
		ev |= Renamed
	}
	if mask&unix.IN_UNMOUNT != 0 {
		ev |= Revoked
	}
	return
}

func (that *inotifyWatcher) Monitor(path string, events Events, cb Callback) error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return errs.ErrWatcherClosed
	}
	wd, err := sys.InotifyAddWatch(that.fd, path, toMask(events))
	if err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	if old, ok := that.byPath[path]; ok && old.wd != wd {
		delete(that.byWd, old.wd)
	}
	e := &watchEntry{path: path, wd: wd, events: events, cb: cb}
	that.byWd[wd] = e
	that.byPath[path] = e
	return nil
}

func (that *inotifyWatcher) drop(e *watchEntry) {
	delete(that.byWd, e.wd)
	if cur, ok := that.byPath[e.path]; ok && cur == e {
		delete(that.byPath, e.path)
	}
}

func (that *inotifyWatcher) Remove(path string) error {
	that.lock.Lock()
	defer that.lock.Unlock()
	e, ok := that.byPath[path]
	if !ok {
		return errors.Wrap(errs.ErrNotWatched, path)
	}
	that.drop(e)
	return sys.InotifyRmWatch(that.fd, e.wd)
}

type delivery struct {
	entry *watchEntry
	ev    Events
}

func (that *inotifyWatcher) collect(events []sys.InotifyEvent) (out []delivery) {
	that.lock.Lock()
	defer that.lock.Unlock()
	for _, raw := range events {
		e, ok := that.byWd[raw.Wd]
		if !ok {
			continue
		}
		if ev := fromMask(raw.Mask) & e.events; ev != 0 {
			out = append(out, delivery{entry: e, ev: ev})
		}
		if raw.Mask&unix.IN_IGNORED != 0 {
			that.drop(e)
		}
	}
	return
}

func (that *inotifyWatcher) readEvents(_ int, _ uint32) error {
	for {
		n, err := unix.Read(that.fd, that.buf)
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read inotify events")
		}
		if n <= 0 {
			return nil
		}
		for _, d := range that.collect(sys.ParseInotifyEvents(that.buf[:n])) {
			if d.entry.cb(d.entry.path, d.ev) {
				that.stop(d.entry)
			}
		}
	}
}

func (that *inotifyWatcher) stop(e *watchEntry) {
	that.lock.Lock()
	defer that.lock.Unlock()
	if cur, ok := that.byWd[e.wd]; !ok || cur != e {
		return
	}
	that.drop(e)
	_ = sys.InotifyRmWatch(that.fd, e.wd)
}

func (that *inotifyWatcher) onTrigger() error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return errs.ErrWatcherClosed
	}
	return nil
}

func (that *inotifyWatcher) Run() error {
	that.lock.Lock()
	if that.closed {
		that.lock.Unlock()
		return errs.ErrWatcherClosed
	}
	that.running = true
	that.lock.Unlock()

	err := sys.WaitPoll(that.pollFd, that.pollEvFd, that.readEvents, that.onTrigger, doWatchErr)
	that.release()
	if err == errs.ErrWatcherClosed {
		err = nil
	}
	return err
}

func (that *inotifyWatcher) release() {
	unix.Close(that.fd)
	unix.Close(that.pollEvFd)
	unix.Close(that.pollFd)
}

func (that *inotifyWatcher) Close() error {
	that.lock.Lock()
	defer that.lock.Unlock()
	if that.closed {
		return nil
	}
	that.closed = true
	if that.running {
		return sys.Trigger(that.pollFd, that.pollEvFd)
	}
	that.release()
	return nil
}
