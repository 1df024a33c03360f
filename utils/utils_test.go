package utils

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDataForWritev(t *testing.T) {
	data := []byte("abcdefghij")

	parts := SplitDataForWritev(data, 4)
	require.Len(t, parts, 3)
	assert.Equal(t, "abcd", string(parts[0]))
	assert.Equal(t, "efgh", string(parts[1]))
	assert.Equal(t, "ij", string(parts[2]))

	parts = SplitDataForWritev(data, 5)
	require.Len(t, parts, 2)
	assert.Equal(t, "fghij", string(parts[1]))

	parts = SplitDataForWritev(data, 64)
	require.Len(t, parts, 1)
	assert.Equal(t, data, parts[0])
}

func TestCString(t *testing.T) {
	assert.Equal(t, "eth0", CString([]byte{'e', 't', 'h', '0', 0, 0, 'x'}))
	assert.Equal(t, "lo", CString([]byte("lo")))
	assert.Equal(t, "", CString([]byte{0, 'a'}))
}

func TestSysError(t *testing.T) {
	assert.NoError(t, SysError("close", nil))

	err := SysError("close", os.ErrClosed)
	var sysErr *os.SyscallError
	require.True(t, errors.As(err, &sysErr))
	assert.Equal(t, "close", sysErr.Syscall)
	assert.ErrorIs(t, err, os.ErrClosed)
}
