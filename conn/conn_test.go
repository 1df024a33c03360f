//go:build linux

package conn

import (
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/poll"
	"github.com/moqsien/sxnet/sys"
)

type testLoop struct {
	removed []int
	count   int32
}

func (that *testLoop) AddConnCount(i int32) int32 { return atomic.AddInt32(&that.count, i) }
func (that *testLoop) GetConnCount() int32        { return atomic.LoadInt32(&that.count) }
func (that *testLoop) RemoveConn(fd int)          { that.removed = append(that.removed, fd) }
func (that *testLoop) GetIndex() int              { return 0 }

type testHandler struct {
	greeting []byte
	tracked  [][]byte
	closed   int
	reason   error
}

func (that *testHandler) OnAccept(iface.RawConn) error { return nil }

func (that *testHandler) OnOpen(*iface.Context) ([]byte, error) { return that.greeting, nil }

func (that *testHandler) OnTrack(ctx *iface.Context) error {
	c := ctx.RawConn.(*Conn)
	that.tracked = append(that.tracked, append([]byte(nil), c.Next(-1)...))
	return nil
}

func (that *testHandler) OnClose(ctx *iface.Context, reason error) error {
	that.closed++
	that.reason = reason
	return nil
}

func newPair(t *testing.T, h *testHandler) (*Conn, int, *testLoop) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	require.NoError(t, err)
	require.NoError(t, sys.SetNonblock(fds[0]))
	t.Cleanup(func() { unix.Close(fds[1]) })

	p, err := poll.New()
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	loop := &testLoop{}
	c := NewTCPConn(fds[0], p, nil, nil, nil, h)
	c.Loop = loop
	require.NoError(t, p.AddRead(c))
	require.NoError(t, c.Open(iface.ConnNoneAdapter))
	return c, fds[1], loop
}

func readAll(t *testing.T, fd, n int) string {
	buf := make([]byte, 0, n)
	tmp := make([]byte, n)
	for len(buf) < n {
		m, err := unix.Read(fd, tmp[:n-len(buf)])
		require.NoError(t, err)
		require.Greater(t, m, 0)
		buf = append(buf, tmp[:m]...)
	}
	return string(buf)
}

func TestOpenSendsGreeting(t *testing.T) {
	h := &testHandler{greeting: []byte("hello\n")}
	_, peer, _ := newPair(t, h)
	assert.Equal(t, "hello\n", readAll(t, peer, 6))
}

func TestWriteAndWritev(t *testing.T) {
	h := &testHandler{}
	c, peer, _ := newPair(t, h)

	n, err := c.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = c.Writev([][]byte{[]byte("de"), []byte("fg")})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcdefg", readAll(t, peer, 7))
}

func TestSendFileKeepsOrder(t *testing.T) {
	h := &testHandler{}
	c, peer, _ := newPair(t, h)

	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)

	_, err = c.Write([]byte("<"))
	require.NoError(t, err)
	require.NoError(t, c.SendFile(f, 2, 5))
	_, err = c.Write([]byte(">"))
	require.NoError(t, err)

	assert.Equal(t, "<23456>", readAll(t, peer, 7))
	assert.Empty(t, c.segments)
}

func TestReadFromFdTracks(t *testing.T) {
	h := &testHandler{}
	c, peer, _ := newPair(t, h)

	_, err := unix.Write(peer, []byte("ping"))
	require.NoError(t, err)
	require.NoError(t, c.ReadFromFd())
	require.Len(t, h.tracked, 1)
	assert.Equal(t, "ping", string(h.tracked[0]))
	assert.Equal(t, 0, c.InboundBuffered())
}

func TestPeerCloseShutsDown(t *testing.T) {
	h := &testHandler{}
	c, peer, loop := newPair(t, h)
	fd := c.Fd

	require.NoError(t, unix.Close(peer))
	require.NoError(t, c.ReadFromFd())
	assert.Equal(t, 1, h.closed)
	assert.ErrorIs(t, h.reason, sys.ECONNRESET)
	assert.Equal(t, []int{fd}, loop.removed)
	assert.False(t, c.Opened)

	// a second close is a no-op
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, h.closed)
}

func TestReadEmptyIsEOF(t *testing.T) {
	c := &Conn{}
	n, err := c.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Error(t, err)

	c.InBuffer = []byte("xyz")
	buf := make([]byte, 2)
	n, err = c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "xy", string(buf[:n]))
	assert.Equal(t, "z", string(c.Next(0)))
}

func TestAdapt(t *testing.T) {
	c := &Conn{}
	assert.Same(t, c, c.Adapt(iface.ConnNoneAdapter))
	assert.IsType(t, &WritevConn{}, c.Adapt(iface.ConnWritevAdapter))
	assert.IsType(t, &AsyncWriteConn{}, c.Adapt(iface.ConnAsyncWriteAdapter))
	assert.IsType(t, &AsyncWritevConn{}, c.Adapt(iface.ConnAsyncWritevAdapter))
}

func TestWriteErrorClosesConn(t *testing.T) {
	h := &testHandler{}
	c, peer, loop := newPair(t, h)
	fd := c.Fd
	require.NoError(t, unix.Shutdown(peer, unix.SHUT_RD))

	n, err := c.Write([]byte("lost"))
	assert.Equal(t, -1, n)
	assert.ErrorIs(t, err, unix.EPIPE)
	assert.False(t, c.Opened)
	assert.Equal(t, 1, h.closed)
	assert.Equal(t, []int{fd}, loop.removed)

	n, err = c.Write([]byte("again"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, net.ErrClosed)

	path := filepath.Join(t.TempDir(), "payload")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SendFile(f, 0, 10), net.ErrClosed)
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}
