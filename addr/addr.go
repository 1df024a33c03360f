//go:build linux || darwin || freebsd

// Package addr describes socket endpoints independently of the address
// family and converts them to and from kernel socket addresses.
package addr

import (
	"net"
	"strconv"

	sockaddr "github.com/hashicorp/go-sockaddr"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/sys"
	"github.com/moqsien/sxnet/utils/errs"
)

type Domain int

const (
	Unspec Domain = unix.AF_UNSPEC
	Unix   Domain = unix.AF_UNIX
	Inet   Domain = unix.AF_INET
	Inet6  Domain = unix.AF_INET6
	Link   Domain = sys.AF_LINK
)

func (that Domain) String() string {
	switch that {
	case Unix:
		return "unix"
	case Inet:
		return "inet"
	case Inet6:
		return "inet6"
	case Link:
		return "link"
	case Unspec:
		return "unspec"
	default:
		return "domain(" + strconv.Itoa(int(that)) + ")"
	}
}

type SocketType int

const (
	Stream    SocketType = unix.SOCK_STREAM
	Dgram     SocketType = unix.SOCK_DGRAM
	Raw       SocketType = unix.SOCK_RAW
	RDM       SocketType = unix.SOCK_RDM
	SeqPacket SocketType = unix.SOCK_SEQPACKET
)

// Address is one endpoint. Only the fields of its Family are meaningful.
type Address struct {
	Family Domain
	IP     net.IP
	Port   uint16
	Path   string
	Link   *sys.LinkAddr
}

// New builds an address from its text form. For Unix the address is the path
// and port is ignored; inet and inet6 require a literal IP.
func New(address string, domain Domain, port uint16) (*Address, error) {
	switch domain {
	case Unix:
		if len(address) >= unixPathMax {
			return nil, errors.Wrapf(errs.ErrPathTooLong, "%q is %d bytes, limit %d", address, len(address), unixPathMax-1)
		}
		return &Address{Family: Unix, Path: address}, nil
	case Inet:
		ip := net.ParseIP(address).To4()
		if ip == nil {
			return nil, errors.Errorf("%q is not an IPv4 address", address)
		}
		return &Address{Family: Inet, IP: ip, Port: port}, nil
	case Inet6:
		ip := net.ParseIP(address)
		if ip == nil {
			return nil, errors.Errorf("%q is not an IPv6 address", address)
		}
		return &Address{Family: Inet6, IP: ip.To16(), Port: port}, nil
	default:
		return nil, errors.Wrapf(errs.ErrNonImplementedDomain, "new address in %s", domain)
	}
}

// Any is the wildcard address of domain.
func Any(domain Domain, port uint16) (*Address, error) {
	switch domain {
	case Inet:
		return &Address{Family: Inet, IP: net.IPv4zero.To4(), Port: port}, nil
	case Inet6:
		return &Address{Family: Inet6, IP: net.IPv6unspecified, Port: port}, nil
	default:
		return nil, errors.Wrapf(errs.ErrNonImplementedDomain, "wildcard address in %s", domain)
	}
}

func Broadcast(port uint16) *Address {
	return &Address{Family: Inet, IP: net.IPv4bcast.To4(), Port: port}
}

// FromSockaddr converts a kernel socket address.
func FromSockaddr(sa unix.Sockaddr) (*Address, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		ip := make(net.IP, net.IPv4len)
		copy(ip, v.Addr[:])
		return &Address{Family: Inet, IP: ip, Port: uint16(v.Port)}, nil
	case *unix.SockaddrInet6:
		ip := make(net.IP, net.IPv6len)
		copy(ip, v.Addr[:])
		return &Address{Family: Inet6, IP: ip, Port: uint16(v.Port)}, nil
	case *unix.SockaddrUnix:
		return &Address{Family: Unix, Path: v.Name}, nil
	case nil:
		return nil, errors.Wrap(errs.ErrNonImplementedDomain, "nil sockaddr")
	}
	la, err := sys.LinkAddrFromSockaddr(sa)
	if err != nil {
		return nil, errors.Wrapf(errs.ErrNonImplementedDomain, "sockaddr %T", sa)
	}
	return &Address{Family: Link, Link: la}, nil
}

// Sockaddr converts the address for bind, connect and sendto.
func (that *Address) Sockaddr() (unix.Sockaddr, error) {
	switch that.Family {
	case Inet:
		sa := &unix.SockaddrInet4{Port: int(that.Port)}
		copy(sa.Addr[:], that.IP.To4())
		return sa, nil
	case Inet6:
		sa := &unix.SockaddrInet6{Port: int(that.Port)}
		copy(sa.Addr[:], that.IP.To16())
		return sa, nil
	case Unix:
		return &unix.SockaddrUnix{Name: that.Path}, nil
	case Link:
		if that.Link == nil {
			return nil, errors.Wrap(errs.ErrNotLinkFamily, "link address without payload")
		}
		return that.Link.Sockaddr(), nil
	default:
		return nil, errors.Wrapf(errs.ErrNonImplementedDomain, "sockaddr for %s", that.Family)
	}
}

// Socklen is the size of the raw kernel structure for the family.
func (that *Address) Socklen() int {
	switch that.Family {
	case Inet:
		return unix.SizeofSockaddrInet4
	case Inet6:
		return unix.SizeofSockaddrInet6
	case Unix:
		return unix.SizeofSockaddrUnix
	case Link:
		return sys.SizeofSockaddrDl
	default:
		return 0
	}
}

func (that *Address) Domain() Domain {
	return that.Family
}

// IPAddress is the printable host part: the IP, the unix path or the hardware address.
func (that *Address) IPAddress() string {
	switch that.Family {
	case Inet, Inet6:
		return that.IP.String()
	case Unix:
		return that.Path
	case Link:
		if that.Link != nil {
			return that.Link.Addr.String()
		}
	}
	return ""
}

// NetAddr converts to the net package form for network, e.g. "tcp" or "udp6".
func (that *Address) NetAddr(network string) net.Addr {
	switch that.Family {
	case Inet, Inet6:
		switch network {
		case "udp", "udp4", "udp6":
			return &net.UDPAddr{IP: that.IP, Port: int(that.Port)}
		case "ip", "ip4", "ip6":
			return &net.IPAddr{IP: that.IP}
		default:
			return &net.TCPAddr{IP: that.IP, Port: int(that.Port)}
		}
	case Unix:
		if network == "" {
			network = "unix"
		}
		return &net.UnixAddr{Name: that.Path, Net: network}
	}
	return nil
}

func (that *Address) String() string {
	switch that.Family {
	case Inet, Inet6:
		return net.JoinHostPort(that.IP.String(), strconv.Itoa(int(that.Port)))
	case Unix:
		return that.Path
	case Link:
		if that.Link != nil {
			return that.Link.String()
		}
	}
	return that.Family.String()
}

// IsPrivate reports whether an inet address lies in RFC 1918 or RFC 4193 space.
func (that *Address) IsPrivate() bool {
	if that.Family != Inet && that.Family != Inet6 {
		return false
	}
	sa, err := sockaddr.NewIPAddr(that.IP.String())
	if err != nil {
		return false
	}
	return sockaddr.IsRFC(1918, sa) || sockaddr.IsRFC(4193, sa)
}
