package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestInotifyMaskMapping(t *testing.T) {
	assert.Equal(t, uint32(unix.IN_MODIFY|unix.IN_UNMOUNT), toMask(Written))
	assert.Equal(t, uint32(unix.IN_MODIFY|unix.IN_UNMOUNT), toMask(SizeChanged))
	assert.Equal(t, uint32(unix.IN_ATTRIB|unix.IN_DELETE_SELF|unix.IN_UNMOUNT), toMask(Linked|Deleted))
	assert.Equal(t, uint32(unix.IN_MOVE_SELF|unix.IN_UNMOUNT), toMask(Renamed))
	assert.Equal(t, uint32(unix.IN_UNMOUNT), toMask(Revoked))
	assert.Equal(t, uint32(unix.IN_UNMOUNT), toMask(0))

	assert.Equal(t, Written|SizeChanged, fromMask(unix.IN_MODIFY))
	assert.Equal(t, Revoked, fromMask(unix.IN_UNMOUNT))
	assert.Equal(t, Deleted|Renamed, fromMask(unix.IN_DELETE_SELF|unix.IN_MOVE_SELF))
}

func TestMonitorRevokedOnly(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(t.TempDir(), "revoked")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.NoError(t, w.Monitor(path, Revoked, func(string, Events) bool { return false }))
	assert.NoError(t, w.Remove(path))
}
