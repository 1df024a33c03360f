//go:build darwin || freebsd

package sys

import (
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// Socket creates a close-on-exec socket. darwin has no SOCK_CLOEXEC, the
// flag is set under ForkLock like the net package does.
func Socket(domain, typ, proto int) (int, error) {
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(domain, typ, proto)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	if err != nil {
		return -1, utils.SysError("socket", err)
	}
	return fd, nil
}
