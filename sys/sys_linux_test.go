//go:build linux

package sys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (int, int) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestAvailableBytes(t *testing.T) {
	a, b := socketPair(t)

	n, err := AvailableBytes(b)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = Write(a, []byte("hello link"))
	require.NoError(t, err)
	n, err = AvailableBytes(b)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestSendFile(t *testing.T) {
	a, b := socketPair(t)

	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	offset := int64(2)
	n, err := SendFile(a, int(f.Fd()), &offset, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.EqualValues(t, 7, offset)

	buf := make([]byte, 16)
	n, err = Read(b, buf)
	require.NoError(t, err)
	assert.Equal(t, "23456", string(buf[:n]))
}

func TestWritevReadv(t *testing.T) {
	a, b := socketPair(t)

	n, err := Writev(a, [][]byte{[]byte("abc"), {}, []byte("def")})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	p1, p2 := make([]byte, 2), make([]byte, 8)
	n, err = Readv(b, [][]byte{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, "ab", string(p1))
	assert.Equal(t, "cdef", string(p2[:4]))
}

func TestParseInotifyEvents(t *testing.T) {
	fd, err := InotifyInit()
	require.NoError(t, err)
	defer unix.Close(fd)

	dir := t.TempDir()
	_, err = InotifyAddWatch(fd, dir, unix.IN_CREATE)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "created.txt"), nil, 0o644))

	buf := make([]byte, 4096)
	var n int
	require.Eventually(t, func() bool {
		n, err = unix.Read(fd, buf)
		return err == nil && n > 0
	}, 2*time.Second, 10*time.Millisecond)

	events := ParseInotifyEvents(buf[:n])
	require.NotEmpty(t, events)
	assert.NotZero(t, events[0].Mask&unix.IN_CREATE)
	assert.Equal(t, "created.txt", events[0].Name)

	assert.Empty(t, ParseInotifyEvents(buf[:unix.SizeofInotifyEvent-1]))
}

func TestWaitPollTrigger(t *testing.T) {
	pollFd, pollEvFd, err := CreatePoll()
	require.NoError(t, err)
	defer unix.Close(pollFd)
	defer unix.Close(pollEvFd)

	stop := errors.New("stop")
	done := make(chan error, 1)
	go func() {
		done <- WaitPoll(pollFd, pollEvFd,
			func(fd int, events uint32) error { return nil },
			func() error { return stop },
			func(err error) error { return err })
	}()

	require.NoError(t, Trigger(pollFd, pollEvFd))
	select {
	case err = <-done:
		assert.ErrorIs(t, err, stop)
	case <-time.After(2 * time.Second):
		t.Fatal("poll was not woken up")
	}
}

func TestWaitPollReadable(t *testing.T) {
	pollFd, pollEvFd, err := CreatePoll()
	require.NoError(t, err)
	defer unix.Close(pollFd)
	defer unix.Close(pollEvFd)

	a, b := socketPair(t)
	require.NoError(t, AddRead(pollFd, b))
	_, err = Write(a, []byte("x"))
	require.NoError(t, err)

	stop := errors.New("stop")
	var gotFd int
	var gotEvents uint32
	err = WaitPoll(pollFd, pollEvFd,
		func(fd int, events uint32) error {
			gotFd, gotEvents = fd, events
			return stop
		}, nil,
		func(err error) error { return err })
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, b, gotFd)
	assert.NotZero(t, gotEvents&InEvents)
}
