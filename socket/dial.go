//go:build linux || darwin || freebsd

package socket

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/dns"
	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils"
	"github.com/moqsien/sxnet/utils/errs"
)

// DefaultResponseSize bounds what Oneshot reads when no size is given.
const DefaultResponseSize = 4 << 20

// Client is a blocking outgoing socket.
type Client struct {
	fd     int
	remote *addr.Address
	typ    addr.SocketType
}

// Dial connects a new socket of type typ to a. Stream is used when typ is zero.
func Dial(a *addr.Address, typ addr.SocketType) (*Client, error) {
	if a == nil {
		return nil, errors.Wrap(errs.ErrNoAddress, "dial")
	}
	if typ == 0 {
		typ = addr.Stream
	}
	sa, err := a.Sockaddr()
	if err != nil {
		return nil, err
	}
	fd, err := sys.Socket(int(a.Family), int(typ), 0)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s socket", a.Family)
	}
	for {
		err = unix.Connect(fd, sa)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(utils.SysError("connect", err), "connect %s", a)
	}
	return &Client{fd: fd, remote: a, typ: typ}, nil
}

func dialEach(ctx context.Context, all []*addr.Address, typ addr.SocketType) (c *Client, err error) {
	for _, a := range all {
		if e := ctx.Err(); e != nil {
			return nil, e
		}
		if c, err = Dial(a, typ); err == nil {
			return c, nil
		}
	}
	if err == nil {
		err = errs.ErrNoAddress
	}
	return nil, err
}

// DialHost resolves hostname and service and connects to the first address
// that accepts the connection.
func DialHost(ctx context.Context, hostname, service string, typ addr.SocketType, hints ...dns.Hint) (*Client, error) {
	all, err := dns.Lookup(ctx, hostname, service, append(hints, dns.WithSockType(sockTypeOrStream(typ)))...)
	if err != nil {
		return nil, err
	}
	return dialEach(ctx, all, typ)
}

// DialPort is DialHost with a numeric port.
func DialPort(ctx context.Context, hostname string, port uint16, typ addr.SocketType, hints ...dns.Hint) (*Client, error) {
	all, err := dns.LookupPort(ctx, hostname, port, append(hints, dns.WithSockType(sockTypeOrStream(typ)))...)
	if err != nil {
		return nil, err
	}
	return dialEach(ctx, all, typ)
}

func sockTypeOrStream(typ addr.SocketType) addr.SocketType {
	if typ == 0 {
		return addr.Stream
	}
	return typ
}

func (that *Client) Fd() int {
	return that.fd
}

func (that *Client) RemoteAddr() *addr.Address {
	return that.remote
}

func (that *Client) Type() addr.SocketType {
	return that.typ
}

// SetTimeout bounds every later Read and Write, zero removes the bound.
func (that *Client) SetTimeout(d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(that.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return utils.SysError("setsockopt", err)
	}
	return utils.SysError("setsockopt", unix.SetsockoptTimeval(that.fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv))
}

func (that *Client) Write(p []byte) (n int, err error) {
	for n < len(p) {
		m, e := unix.Write(that.fd, p[n:])
		switch {
		case e == unix.EINTR:
			continue
		case e == unix.EAGAIN:
			return n, os.ErrDeadlineExceeded
		case e != nil:
			return n, utils.SysError("write", e)
		}
		n += m
		if that.typ != addr.Stream {
			break
		}
	}
	return
}

// Read receives at most size bytes. With size <= 0 it asks the kernel how
// much is waiting and reads that, or blocks for up to DefaultReadBuffer
// bytes when nothing is. A closed peer gives io.EOF.
func (that *Client) Read(size int) ([]byte, error) {
	if size <= 0 {
		if avail, err := sys.AvailableBytes(that.fd); err == nil && avail > 0 {
			size = avail
		} else {
			size = iface.DefaultReadBuffer
		}
	}
	buf := make([]byte, size)
	for {
		n, err := unix.Read(that.fd, buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return nil, os.ErrDeadlineExceeded
		case err != nil:
			return nil, utils.SysError("read", err)
		case n == 0 && that.typ == addr.Stream:
			return nil, io.EOF
		}
		return buf[:n], nil
	}
}

func (that *Client) Close() error {
	if that.fd < 0 {
		return nil
	}
	err := unix.Close(that.fd)
	that.fd = -1
	return utils.SysError("close", err)
}

// exchange sends req and collects the answer until size bytes arrived, the
// peer closed or timeout passed with some data received.
func (that *Client) exchange(req []byte, size int, timeout time.Duration) (resp []byte, err error) {
	if size <= 0 {
		size = DefaultResponseSize
	}
	if err = that.SetTimeout(timeout); err != nil {
		return nil, err
	}
	if _, err = that.Write(req); err != nil {
		return nil, err
	}
	for len(resp) < size {
		var b []byte
		if b, err = that.Read(size - len(resp)); err != nil {
			break
		}
		resp = append(resp, b...)
		if that.typ != addr.Stream {
			break
		}
	}
	switch {
	case err == nil, err == io.EOF:
		return resp, nil
	case errors.Is(err, os.ErrDeadlineExceeded) && len(resp) > 0:
		return resp, nil
	default:
		return resp, err
	}
}

// Oneshot connects to hostname and service, sends req and returns the
// response, up to size bytes.
func Oneshot(ctx context.Context, hostname, service string, req []byte, size int, timeout time.Duration, hints ...dns.Hint) ([]byte, error) {
	c, err := DialHost(ctx, hostname, service, addr.Stream, hints...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.exchange(req, size, timeout)
}

// OneshotUnix is Oneshot over a unix socket at path.
func OneshotUnix(path string, typ addr.SocketType, req []byte, size int, timeout time.Duration) ([]byte, error) {
	a, err := addr.New(path, addr.Unix, 0)
	if err != nil {
		return nil, err
	}
	c, err := Dial(a, typ)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.exchange(req, size, timeout)
}
