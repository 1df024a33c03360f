//go:build linux

package sys

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// InotifyEvent is one decoded record of an inotify read.
type InotifyEvent struct {
	Wd     int
	Mask   uint32
	Cookie uint32
	Name   string
}

func InotifyInit() (int, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return -1, utils.SysError("inotify_init1", err)
	}
	return fd, nil
}

func InotifyAddWatch(fd int, path string, mask uint32) (int, error) {
	wd, err := unix.InotifyAddWatch(fd, path, mask)
	if err != nil {
		return -1, utils.SysError("inotify_add_watch", err)
	}
	return wd, nil
}

func InotifyRmWatch(fd, wd int) error {
	_, err := unix.InotifyRmWatch(fd, uint32(wd))
	return utils.SysError("inotify_rm_watch", err)
}

// ParseInotifyEvents decodes a buffer filled by read(2) on an inotify fd.
// A truncated trailing record is dropped.
func ParseInotifyEvents(buf []byte) (events []InotifyEvent) {
	for offset := 0; offset+unix.SizeofInotifyEvent <= len(buf); {
		var raw unix.InotifyEvent
		copy((*[unix.SizeofInotifyEvent]byte)(unsafe.Pointer(&raw))[:], buf[offset:])
		end := offset + unix.SizeofInotifyEvent + int(raw.Len)
		if end > len(buf) {
			return
		}
		events = append(events, InotifyEvent{
			Wd:     int(raw.Wd),
			Mask:   raw.Mask,
			Cookie: raw.Cookie,
			Name:   utils.CString(buf[offset+unix.SizeofInotifyEvent : end]),
		})
		offset = end
	}
	return
}
