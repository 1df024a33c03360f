//go:build darwin || freebsd

package sys

import (
	"errors"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

const (
	kSysAdd = "kevent_add"
	kSysDel = "kevent_del"
)

func kevent(fd, filter, flags int) unix.Kevent_t {
	var ev unix.Kevent_t
	unix.SetKevent(&ev, fd, filter, flags)
	return ev
}

func keventCtl(pollFd int, name string, changes ...unix.Kevent_t) error {
	_, err := unix.Kevent(pollFd, changes, nil, nil)
	return utils.SysError(name, err)
}

func AddReadWrite(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysAdd,
		kevent(fd, unix.EVFILT_READ, unix.EV_ADD),
		kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
}

func AddRead(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysAdd, kevent(fd, unix.EVFILT_READ, unix.EV_ADD))
}

func AddWrite(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysAdd, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
}

func ModRead(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysDel, kevent(fd, unix.EVFILT_WRITE, unix.EV_DELETE))
}

func ModWrite(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysAdd,
		kevent(fd, unix.EVFILT_READ, unix.EV_DELETE),
		kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
}

func ModReadWrite(pollFd, fd int) (err error) {
	return keventCtl(pollFd, kSysAdd, kevent(fd, unix.EVFILT_WRITE, unix.EV_ADD))
}

// UnRegister drops both filters, a filter that was never added is not an error.
func UnRegister(pollFd, fd int) (err error) {
	for _, filter := range []int{unix.EVFILT_READ, unix.EVFILT_WRITE} {
		if e := keventCtl(pollFd, kSysDel, kevent(fd, filter, unix.EV_DELETE)); e != nil && err == nil {
			err = e
		}
	}
	if errors.Is(err, unix.ENOENT) {
		err = nil
	}
	return
}

// AddVnode opens path and watches it for the given NOTE_* flags.
func AddVnode(pollFd int, path string, fflags uint32) (fd int, err error) {
	fd, err = unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, utils.SysError("open", err)
	}
	ev := kevent(fd, unix.EVFILT_VNODE, unix.EV_ADD|unix.EV_ENABLE|unix.EV_CLEAR)
	ev.Fflags = fflags
	if err = keventCtl(pollFd, kSysAdd, ev); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return
}

func DelVnode(pollFd, fd int) error {
	err := keventCtl(pollFd, kSysDel, kevent(fd, unix.EVFILT_VNODE, unix.EV_DELETE))
	if cerr := unix.Close(fd); err == nil {
		err = utils.SysError("close", cerr)
	}
	return err
}

func Trigger(pollFd, _ int) error {
	ev := kevent(0, unix.EVFILT_USER, 0)
	ev.Fflags = unix.NOTE_TRIGGER
	return keventCtl(pollFd, "kevent_trigger", ev)
}

func toEvents(ev *unix.Kevent_t) (events uint32) {
	switch ev.Filter {
	case unix.EVFILT_READ:
		events = InEvents
	case unix.EVFILT_WRITE:
		events = OutEvents
	case unix.EVFILT_VNODE:
		return VnodeEvents | ev.Fflags
	}
	if ev.Flags&unix.EV_ERROR != 0 {
		return ClosedFdEvents
	}
	if ev.Flags&unix.EV_EOF != 0 {
		if ev.Filter == unix.EVFILT_READ && ev.Data > 0 {
			return events | ClosedFdEvents
		}
		return ClosedFdEvents
	}
	return
}

func WaitPoll(pollFd, pollEvFd int, w WaitCallback, t TriggerCallback, doErr DoError) error {
	var (
		events = make([]unix.Kevent_t, InitPollSize)
		ts     unix.Timespec
		tsp    *unix.Timespec
	)
	for {
		n, err := unix.Kevent(pollFd, nil, events, tsp)
		if n == 0 || err == unix.EINTR {
			tsp = nil
			runtime.Gosched()
			continue
		} else if err != nil {
			return utils.SysError("kevent_wait", err)
		}
		tsp = &ts

		var trigger bool
		for i := 0; i < n; i++ {
			ev := &events[i]
			if ev.Filter == unix.EVFILT_USER {
				trigger = true
				continue
			}
			if err = doErr(w(int(ev.Ident), toEvents(ev))); err != nil {
				return err
			}
		}
		if trigger && t != nil {
			if err = doErr(t()); err != nil {
				return err
			}
		}

		if n == len(events) && n<<1 <= MaxPollSize {
			events = make([]unix.Kevent_t, n<<1)
		} else if n < len(events)>>1 && len(events)>>1 >= MinPollSize {
			events = make([]unix.Kevent_t, len(events)>>1)
		}
	}
}

// CreatePoll returns the kqueue twice, wake-ups go through EVFILT_USER on the same queue.
func CreatePoll() (pollFd, pollEvFd int, err error) {
	pollFd, err = unix.Kqueue()
	if err != nil {
		err = utils.SysError("kqueue", err)
		return
	}
	err = keventCtl(pollFd, "kqueue_user", kevent(0, unix.EVFILT_USER, unix.EV_ADD|unix.EV_CLEAR))
	if err != nil {
		unix.Close(pollFd)
		return
	}
	pollEvFd = pollFd
	return
}
