//go:build linux

package sys

import (
	"encoding/binary"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

const (
	ReadEvents      = unix.EPOLLPRI | unix.EPOLLIN
	WriteEvents     = unix.EPOLLOUT
	ReadWriteEvents = ReadEvents | WriteEvents
)

var triggerValue = func() []byte {
	b := make([]byte, 8)
	binary.NativeEndian.PutUint64(b, 1)
	return b
}()

func epollFdHandler(pollFd, fd, ctlAction int, evs uint32) (err error) {
	var event *unix.EpollEvent
	if ctlAction != unix.EPOLL_CTL_DEL {
		event = &unix.EpollEvent{Fd: int32(fd), Events: evs}
	}
	err = unix.EpollCtl(pollFd, ctlAction, fd, event)
	var eSysName string
	switch ctlAction {
	case unix.EPOLL_CTL_ADD:
		eSysName = "epoll_ctl_add"
	case unix.EPOLL_CTL_MOD:
		eSysName = "epoll_ctl_mod"
	case unix.EPOLL_CTL_DEL:
		eSysName = "epoll_ctl_del"
	default:
	}
	return utils.SysError(eSysName, err)
}

func AddReadWrite(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_ADD, ReadWriteEvents)
}

func AddRead(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_ADD, ReadEvents)
}

func AddWrite(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_ADD, WriteEvents)
}

func ModRead(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_MOD, ReadEvents)
}

func ModWrite(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_MOD, WriteEvents)
}

func ModReadWrite(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_MOD, ReadWriteEvents)
}

func UnRegister(pollFd, fd int) (err error) {
	return epollFdHandler(pollFd, fd, unix.EPOLL_CTL_DEL, 0)
}

// Trigger wakes up WaitPoll through the eventfd.
func Trigger(_, pollEvFd int) error {
	if _, err := unix.Write(pollEvFd, triggerValue); err != nil && err != unix.EAGAIN {
		return utils.SysError("eventfd_write", err)
	}
	return nil
}

func WaitPoll(pollFd, pollEvFd int, w WaitCallback, t TriggerCallback, doErr DoError) error {
	var (
		events       = make([]unix.EpollEvent, InitPollSize)
		timeout      = -1
		pollEvBuffer = make([]byte, 8)
	)
	for {
		n, err := unix.EpollWait(pollFd, events, timeout)
		if n == 0 || err == unix.EINTR {
			timeout = -1
			runtime.Gosched()
			continue
		} else if err != nil {
			return utils.SysError("epoll_wait", err)
		}
		timeout = 0

		var trigger bool
		for i := 0; i < n; i++ {
			ev := &events[i]
			fd := int(ev.Fd)
			if fd == pollEvFd {
				trigger = true
				_, _ = unix.Read(pollEvFd, pollEvBuffer)
				continue
			}
			if err = doErr(w(fd, ev.Events)); err != nil {
				return err
			}
		}
		if trigger && t != nil {
			if err = doErr(t()); err != nil {
				return err
			}
		}

		if n == len(events) && n<<1 <= MaxPollSize {
			events = make([]unix.EpollEvent, n<<1)
		} else if n < len(events)>>1 && len(events)>>1 >= MinPollSize {
			events = make([]unix.EpollEvent, len(events)>>1)
		}
	}
}

func CreatePoll() (pollFd, pollEvFd int, err error) {
	pollFd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		err = utils.SysError("epoll_create1", err)
		return
	}
	pollEvFd, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(pollFd)
		err = utils.SysError("epoll_eventfd", err)
		return
	}
	err = AddRead(pollFd, pollEvFd)
	if err != nil {
		unix.Close(pollFd)
		unix.Close(pollEvFd)
		return
	}
	return
}
