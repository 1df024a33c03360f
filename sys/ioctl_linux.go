//go:build linux

package sys

import "golang.org/x/sys/unix"

// FIONREAD on sockets
const ioctlReadable = unix.TIOCINQ
