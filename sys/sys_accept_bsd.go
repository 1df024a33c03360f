//go:build darwin || freebsd

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

func Accept(fd int, keepAlive int) (nfd int, sa unix.Sockaddr, err error) {
	nfd, sa, err = unix.Accept(fd)
	if err != nil {
		return -1, nil, utils.SysError("accept", err)
	}
	unix.CloseOnExec(nfd)
	if err = unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, nil, utils.SysError("fcntl", err)
	}
	if keepAlive > 0 {
		if err = SetKeepAlive(nfd, keepAlive); err != nil {
			unix.Close(nfd)
			return -1, nil, err
		}
	}
	return
}
