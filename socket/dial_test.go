//go:build linux

package socket

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/dns"
	"github.com/moqsien/sxnet/engine"
	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/service"
)

func serveEcho(t *testing.T) int {
	ln, err := Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	eng := engine.New()
	done := make(chan error, 1)
	go func() {
		done <- eng.Serve(service.Adapt(service.Echo{}), ln, &iface.Options{NumOfLoops: 1, ConnAdapter: iface.ConnNoneAdapter})
	}()
	t.Cleanup(func() {
		require.NoError(t, eng.Stop())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Error("engine did not stop")
		}
	})
	return ln.Addr().(*net.TCPAddr).Port
}

func TestOneshot(t *testing.T) {
	port := serveEcho(t)

	resp, err := Oneshot(context.Background(), "127.0.0.1", strconv.Itoa(port), []byte("ping"), 4, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(resp))

	// the echo server keeps the conn open, the timeout ends the read
	start := time.Now()
	resp, err = Oneshot(context.Background(), "127.0.0.1", strconv.Itoa(port), []byte("pong"), 64, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(resp))
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}

func TestDialReadWrite(t *testing.T) {
	port := serveEcho(t)
	a, err := addr.New("127.0.0.1", addr.Inet, uint16(port))
	require.NoError(t, err)

	c, err := Dial(a, 0)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, addr.Stream, c.Type())
	assert.Equal(t, a, c.RemoteAddr())
	require.NoError(t, c.SetTimeout(time.Second))

	n, err := c.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var got []byte
	for len(got) < 5 {
		b, err := c.Read(0)
		require.NoError(t, err)
		got = append(got, b...)
	}
	assert.Equal(t, "hello", string(got))

	_, err = c.Read(8)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)

	require.NoError(t, c.Close())
	assert.Equal(t, -1, c.Fd())
	assert.NoError(t, c.Close())
}

func TestDialPortTriesResolvedAddresses(t *testing.T) {
	port := serveEcho(t)
	c, err := DialPort(context.Background(), "localhost", uint16(port), addr.Stream, dns.WithFamily(addr.Inet))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, addr.Inet, c.RemoteAddr().Family)
}

func TestDialRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	a, err := addr.New("127.0.0.1", addr.Inet, uint16(port))
	require.NoError(t, err)
	_, err = Dial(a, addr.Stream)
	assert.Error(t, err)

	_, err = Dial(nil, addr.Stream)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DialPort(ctx, "127.0.0.1", uint16(port), addr.Stream)
	assert.Error(t, err)
}

func TestOneshotUnix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "echo.sock")
	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer l.Close()
	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		buf := make([]byte, 16)
		n, _ := c.Read(buf)
		_, _ = c.Write(buf[:n])
	}()

	resp, err := OneshotUnix(path, addr.Stream, []byte("unix"), 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "unix", string(resp))

	_, err = OneshotUnix(filepath.Join(t.TempDir(), "missing.sock"), addr.Stream, []byte("x"), 0, time.Second)
	assert.Error(t, err)
}

func TestClientReadEOF(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	go func() {
		if c, err := l.Accept(); err == nil {
			c.Close()
		}
	}()

	a, err := addr.New("127.0.0.1", addr.Inet, uint16(l.Addr().(*net.TCPAddr).Port))
	require.NoError(t, err)
	c, err := Dial(a, addr.Stream)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetTimeout(time.Second))
	_, err = c.Read(4)
	assert.ErrorIs(t, err, io.EOF)
}
