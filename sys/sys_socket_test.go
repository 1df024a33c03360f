//go:build linux || darwin || freebsd

package sys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSocketCloseOnExec(t *testing.T) {
	for _, typ := range []int{unix.SOCK_STREAM, unix.SOCK_DGRAM} {
		fd, err := Socket(unix.AF_INET, typ, 0)
		require.NoError(t, err)

		flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
		require.NoError(t, err)
		assert.NotZero(t, flags&unix.FD_CLOEXEC)
		require.NoError(t, unix.Close(fd))
	}

	_, err := Socket(-1, unix.SOCK_STREAM, 0)
	assert.Error(t, err)
}
