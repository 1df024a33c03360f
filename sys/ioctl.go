//go:build linux || darwin || freebsd

package sys

import (
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils"
)

// AvailableBytes asks the kernel how many bytes can be read from fd without blocking.
func AvailableBytes(fd int) (int, error) {
	n, err := unix.IoctlGetInt(fd, ioctlReadable)
	if err != nil {
		return 0, utils.SysError("ioctl_fionread", err)
	}
	return n, nil
}
