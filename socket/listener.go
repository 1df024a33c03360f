//go:build linux || darwin || freebsd

package socket

import (
	"io"
	"net"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/iface"
	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils"
	"github.com/moqsien/sxnet/utils/errs"
)

type Listener struct {
	fd     int
	addr   net.Addr
	isUDP  bool
	file   *os.File  // dup of the net listener's fd
	origin io.Closer // listener the fd was taken from
}

var _ iface.IListener = (*Listener)(nil)

func (that *Listener) Accept() (net.Conn, error) {
	return nil, errs.ErrUnsupportedOp
}

func (that *Listener) Close() (err error) {
	if that.fd < 0 {
		return nil
	}
	if that.file != nil {
		err = that.file.Close()
	} else {
		err = utils.SysError("close", unix.Close(that.fd))
	}
	if that.origin != nil {
		if e := that.origin.Close(); err == nil {
			err = e
		}
	}
	that.fd = -1
	return
}

func (that *Listener) Addr() net.Addr {
	return that.addr
}

func (that *Listener) GetFd() int {
	return that.fd
}

func (that *Listener) IsUDP() bool {
	return that.isUDP
}

type filer interface {
	File() (*os.File, error)
}

// ResolveFd duplicates the fd of a net listener or UDP conn.
func ResolveFd(ln interface{}) (*os.File, error) {
	switch ln.(type) {
	case *net.TCPListener, *net.UnixListener, *net.UDPConn, *net.UnixConn:
		return ln.(filer).File()
	default:
		return nil, errors.Errorf("unsupported Listener %T", ln)
	}
}

func adapt(ln io.Closer, local net.Addr, isUDP bool) (gl *Listener, err error) {
	file, err := ResolveFd(ln)
	if err != nil {
		return nil, err
	}
	fd := int(file.Fd())
	if err = sys.SetNonblock(fd); err != nil {
		file.Close()
		return nil, err
	}
	return &Listener{fd: fd, addr: local, isUDP: isUDP, file: file, origin: ln}, nil
}

// Listen opens a listener with the net package and takes over its fd.
func Listen(network, address string) (gl *Listener, err error) {
	if strings.Contains(network, "udp") {
		var uaddr *net.UDPAddr
		uaddr, err = net.ResolveUDPAddr(network, address)
		if err != nil {
			return nil, err
		}
		var l *net.UDPConn
		l, err = net.ListenUDP(network, uaddr)
		if err != nil {
			return nil, err
		}
		if gl, err = adapt(l, l.LocalAddr(), true); err != nil {
			l.Close()
		}
		return
	}
	var l net.Listener
	l, err = net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	if gl, err = adapt(l, l.Addr(), false); err != nil {
		l.Close()
	}
	return
}

func AdaptListener(l net.Listener) (*Listener, error) {
	return adapt(l, l.Addr(), false)
}

func AdaptUDPConn(c *net.UDPConn) (*Listener, error) {
	return adapt(c, c.LocalAddr(), true)
}

// Config describes a socket created directly from an address.
type Config struct {
	Address   *addr.Address
	Type      addr.SocketType // Stream when zero
	Protocol  int
	Backlog   int // iface.DefaultBacklog when zero
	ReusePort bool
}

func (that *Config) network() string {
	udp := that.Type == addr.Dgram
	switch that.Address.Family {
	case addr.Unix:
		if udp {
			return "unixgram"
		}
		return "unix"
	case addr.Inet6:
		if udp {
			return "udp6"
		}
		return "tcp6"
	default:
		if udp {
			return "udp"
		}
		return "tcp"
	}
}

// ListenConfig creates, binds and listens on a socket without the net
// package. Datagram sockets are only bound.
func ListenConfig(cfg *Config) (gl *Listener, err error) {
	if cfg == nil || cfg.Address == nil {
		return nil, errors.Wrap(errs.ErrNoAddress, "listen config")
	}
	if cfg.Type == 0 {
		cfg.Type = addr.Stream
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = iface.DefaultBacklog
	}
	sa, err := cfg.Address.Sockaddr()
	if err != nil {
		return nil, err
	}

	fd, err := sys.Socket(int(cfg.Address.Family), int(cfg.Type), cfg.Protocol)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s socket", cfg.Address.Family)
	}
	defer func() {
		if err != nil {
			unix.Close(fd)
		}
	}()

	if cfg.Address.Family != addr.Unix {
		if err = sys.SetReuseAddr(fd); err != nil {
			return nil, err
		}
		if cfg.ReusePort {
			if err = sys.SetReusePort(fd); err != nil {
				return nil, err
			}
		}
	}
	if err = sys.SetNonblock(fd); err != nil {
		return nil, err
	}
	if err = unix.Bind(fd, sa); err != nil {
		return nil, errors.Wrapf(utils.SysError("bind", err), "bind %s", cfg.Address)
	}
	isUDP := cfg.Type == addr.Dgram
	if !isUDP {
		if err = unix.Listen(fd, cfg.Backlog); err != nil {
			return nil, errors.Wrapf(utils.SysError("listen", err), "listen %s", cfg.Address)
		}
	}

	local := cfg.Address
	if bound, e := unix.Getsockname(fd); e == nil {
		if a, e := addr.FromSockaddr(bound); e == nil {
			local = a
		}
	}
	return &Listener{fd: fd, addr: local.NetAddr(cfg.network()), isUDP: isUDP}, nil
}
