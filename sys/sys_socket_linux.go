//go:build linux

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// Socket creates a close-on-exec socket.
func Socket(domain, typ, proto int) (int, error) {
	fd, err := unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		return -1, utils.SysError("socket", err)
	}
	return fd, nil
}
