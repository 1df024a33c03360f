//go:build linux

package sys

import (
	"net"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils/errs"
)

// AF_LINK is the packet family on Linux.
const AF_LINK = unix.AF_PACKET

// SockaddrDl is sockaddr_ll on Linux.
type SockaddrDl = unix.RawSockaddrLinklayer

// LinkSockaddr is the decoded form accepted by Bind and returned by Getsockname.
type LinkSockaddr = unix.SockaddrLinklayer

const SizeofSockaddrDl = unix.SizeofSockaddrLinklayer

// ParseSockaddrDl decodes the raw bytes of a sockaddr_ll.
func ParseSockaddrDl(b []byte) (*LinkAddr, error) {
	if len(b) < SizeofSockaddrDl {
		return nil, errs.ErrShortSockaddr
	}
	var raw SockaddrDl
	copy((*[SizeofSockaddrDl]byte)(unsafe.Pointer(&raw))[:], b)
	if raw.Family != AF_LINK {
		return nil, errs.ErrNotLinkFamily
	}
	halen := int(raw.Halen)
	if halen > len(raw.Addr) {
		halen = len(raw.Addr)
	}
	return &LinkAddr{
		Family:   raw.Family,
		Index:    int(raw.Ifindex),
		Type:     raw.Hatype,
		Protocol: swap16(raw.Protocol),
		PktType:  raw.Pkttype,
		Addr:     net.HardwareAddr(append([]byte(nil), raw.Addr[:halen]...)),
	}, nil
}

// LinkAddrFromSockaddr converts a decoded sockaddr_ll.
func LinkAddrFromSockaddr(sa unix.Sockaddr) (*LinkAddr, error) {
	ll, ok := sa.(*LinkSockaddr)
	if !ok || ll == nil {
		return nil, errs.ErrNotLinkFamily
	}
	halen := int(ll.Halen)
	if halen > len(ll.Addr) {
		halen = len(ll.Addr)
	}
	return &LinkAddr{
		Family:   AF_LINK,
		Index:    ll.Ifindex,
		Type:     ll.Hatype,
		Protocol: swap16(ll.Protocol),
		PktType:  ll.Pkttype,
		Addr:     net.HardwareAddr(append([]byte(nil), ll.Addr[:halen]...)),
	}, nil
}

// Raw builds the sockaddr_ll; hardware addresses longer than 8 bytes are cut.
func (that *LinkAddr) Raw() SockaddrDl {
	raw := SockaddrDl{
		Family:   AF_LINK,
		Protocol: swap16(that.Protocol),
		Ifindex:  int32(that.Index),
		Hatype:   that.Type,
		Pkttype:  that.PktType,
	}
	raw.Halen = uint8(copy(raw.Addr[:], that.Addr))
	return raw
}

func (that *LinkAddr) Bytes() []byte {
	raw := that.Raw()
	b := make([]byte, SizeofSockaddrDl)
	copy(b, (*[SizeofSockaddrDl]byte)(unsafe.Pointer(&raw))[:])
	return b
}

func (that *LinkAddr) Sockaddr() unix.Sockaddr {
	sa := &LinkSockaddr{
		Protocol: swap16(that.Protocol),
		Ifindex:  that.Index,
		Hatype:   that.Type,
		Pkttype:  that.PktType,
	}
	sa.Halen = uint8(copy(sa.Addr[:], that.Addr))
	return sa
}
