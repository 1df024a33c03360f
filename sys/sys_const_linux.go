//go:build linux

package sys

import "golang.org/x/sys/unix"

const (
	TCP_KEEPINTVL = unix.TCP_KEEPINTVL
	TCP_KEEPIDLE  = unix.TCP_KEEPIDLE
	SOL_SOCKET    = unix.SOL_SOCKET
	IPPROTO_TCP   = unix.IPPROTO_TCP
	SO_KEEPALIVE  = unix.SO_KEEPALIVE
)

const (
	InEvents       = unix.EPOLLIN | unix.EPOLLPRI
	OutEvents      = unix.EPOLLOUT
	ClosedFdEvents = unix.EPOLLERR | unix.EPOLLHUP | unix.EPOLLRDHUP
)
