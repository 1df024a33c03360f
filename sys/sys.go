//go:build linux || darwin || freebsd

package sys

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

type EventHandler interface {
	WriteToFd() error
	ReadFromFd() error
	Shutdown(reason error) error
}

// WaitCallback is called for every ready fd, events are normalized to
// InEvents/OutEvents/ClosedFdEvents.
type WaitCallback func(fd int, events uint32) error

// TriggerCallback is called once per wait round after the poll was woken up by Trigger.
type TriggerCallback func() error

// DoError decides whether an error stops the wait loop, a nil return keeps it going.
type DoError func(err error) error

const (
	MaxPollSize         = 1024
	MinPollSize         = 32
	InitPollSize        = 128
	DefaultTCPKeepAlive = 15 // Seconds
)

const (
	EAGAIN     = unix.EAGAIN
	ECONNRESET = unix.ECONNRESET
	EINTR      = unix.EINTR
)

func CloseFd(fd int) error {
	return unix.Close(fd)
}

func SetKeepAlive(fd int, timeout ...int) (err error) {
	// timeout in seconds.
	secs := DefaultTCPKeepAlive
	if len(timeout) > 0 && timeout[0] > 0 {
		secs = timeout[0]
	}
	err = unix.SetsockoptInt(fd, SOL_SOCKET, SO_KEEPALIVE, 1)
	if err != nil {
		return utils.SysError("setsockopt", err)
	}
	err = unix.SetsockoptInt(fd, IPPROTO_TCP, TCP_KEEPINTVL, secs)
	if err != nil {
		return utils.SysError("setsockopt", err)
	}
	err = unix.SetsockoptInt(fd, IPPROTO_TCP, TCP_KEEPIDLE, secs)
	runtime.KeepAlive(fd)
	return utils.SysError("setsockopt", err)
}

func SetReuseAddr(fd int) error {
	return utils.SysError("setsockopt", unix.SetsockoptInt(fd, SOL_SOCKET, unix.SO_REUSEADDR, 1))
}

func SetReusePort(fd int) error {
	return utils.SysError("setsockopt", unix.SetsockoptInt(fd, SOL_SOCKET, unix.SO_REUSEPORT, 1))
}

func SetNonblock(fd int) error {
	return utils.SysError("fcntl", unix.SetNonblock(fd, true))
}

// HandleEvents dispatches one poll result; pending input is drained before a hang-up closes the fd.
func HandleEvents(events uint32, handler EventHandler) (err error) {
	if events&OutEvents != 0 {
		if err = handler.WriteToFd(); err != nil {
			return
		}
	}

	if events&InEvents != 0 {
		if err = handler.ReadFromFd(); err != nil {
			return
		}
	}

	if events&ClosedFdEvents != 0 && events&InEvents == 0 {
		err = handler.Shutdown(unix.ECONNRESET)
	}
	return
}

var _zero uintptr

func bytes2iovec(bs [][]byte) []unix.Iovec {
	iovecs := make([]unix.Iovec, len(bs))
	for i, b := range bs {
		iovecs[i].SetLen(len(b))
		if len(b) > 0 {
			iovecs[i].Base = &b[0]
		} else {
			iovecs[i].Base = (*byte)(unsafe.Pointer(&_zero))
		}
	}
	return iovecs
}

func writev(fd int, iovs []unix.Iovec) (n int, err error) {
	var _p0 unsafe.Pointer
	if len(iovs) > 0 {
		_p0 = unsafe.Pointer(&iovs[0])
	} else {
		_p0 = unsafe.Pointer(&_zero)
	}
	r0, _, e1 := unix.Syscall(unix.SYS_WRITEV, uintptr(fd), uintptr(_p0), uintptr(len(iovs)))
	n = int(r0)
	if e1 != 0 {
		n, err = 0, e1
	}
	return
}

func readv(fd int, iovs []unix.Iovec) (n int, err error) {
	var _p0 unsafe.Pointer
	if len(iovs) > 0 {
		_p0 = unsafe.Pointer(&iovs[0])
	} else {
		_p0 = unsafe.Pointer(&_zero)
	}
	r0, _, e1 := unix.Syscall(unix.SYS_READV, uintptr(fd), uintptr(_p0), uintptr(len(iovs)))
	n = int(r0)
	if e1 != 0 {
		n, err = 0, e1
	}
	return
}

func Writev(fd int, iovs [][]byte) (n int, err error) {
	iovecs := bytes2iovec(iovs)
	n, err = writev(fd, iovecs)
	runtime.KeepAlive(iovs)
	return n, err
}

func Readv(fd int, iovs [][]byte) (n int, err error) {
	iovecs := bytes2iovec(iovs)
	n, err = readv(fd, iovecs)
	runtime.KeepAlive(iovs)
	return n, err
}

func Write(fd int, p []byte) (n int, err error) {
	return unix.Write(fd, p)
}

func Read(fd int, p []byte) (n int, err error) {
	return unix.Read(fd, p)
}

func WriteUdp(fd int, p []byte, flags int, to unix.Sockaddr) error {
	return unix.Sendto(fd, p, flags, to)
}
