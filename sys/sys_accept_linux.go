//go:build linux

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// Accept takes one pending connection as a non-blocking fd, keepAlive is in seconds.
func Accept(fd int, keepAlive int) (nfd int, sa unix.Sockaddr, err error) {
	nfd, sa, err = unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		return -1, nil, utils.SysError("accept4", err)
	}
	if keepAlive > 0 {
		if err = SetKeepAlive(nfd, keepAlive); err != nil {
			unix.Close(nfd)
			return -1, nil, err
		}
	}
	return
}
