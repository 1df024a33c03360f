//go:build linux || darwin || freebsd

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// SendFile copies count bytes of inFd starting at *offset to outFd inside the
// kernel. offset is advanced by the number of bytes written. EAGAIN is
// returned together with the partial count on a non-blocking socket.
func SendFile(outFd, inFd int, offset *int64, count int) (written int, err error) {
	var start int64
	if offset != nil {
		start = *offset
	}
	written, err = unix.Sendfile(outFd, inFd, &start, count)
	if written < 0 {
		written = 0
	}
	if offset != nil {
		*offset += int64(written)
	}
	switch err {
	case nil, unix.EAGAIN:
		return written, err
	default:
		return written, utils.SysError("sendfile", err)
	}
}
