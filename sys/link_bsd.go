//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package sys

import (
	"encoding/binary"
	"net"

	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils/errs"
)

// AF_LINK is the native link family.
const AF_LINK = unix.AF_LINK

// SockaddrDl is sockaddr_dl.
type SockaddrDl = unix.RawSockaddrDatalink

// LinkSockaddr is the decoded form returned by Getsockname and the routing socket.
type LinkSockaddr = unix.SockaddrDatalink

const SizeofSockaddrDl = unix.SizeofSockaddrDatalink

// fixed part of sockaddr_dl: len, family, index, type, nlen, alen, slen
const sockaddrDlHeader = 8

// ParseSockaddrDl decodes a sockaddr_dl. The kernel may hand out structures
// longer than SizeofSockaddrDl, sdl_len is honored.
func ParseSockaddrDl(b []byte) (*LinkAddr, error) {
	if len(b) < sockaddrDlHeader {
		return nil, errs.ErrShortSockaddr
	}
	if int(b[1]) != AF_LINK {
		return nil, errs.ErrNotLinkFamily
	}
	if l := int(b[0]); l >= sockaddrDlHeader && l < len(b) {
		b = b[:l]
	}
	nlen, alen := int(b[5]), int(b[6])
	data := b[sockaddrDlHeader:]
	if nlen+alen > len(data) {
		return nil, errs.ErrShortSockaddr
	}
	return &LinkAddr{
		Family: uint16(b[1]),
		Index:  int(binary.NativeEndian.Uint16(b[2:4])),
		Type:   uint16(b[4]),
		Name:   string(data[:nlen]),
		Addr:   net.HardwareAddr(append([]byte(nil), data[nlen:nlen+alen]...)),
	}, nil
}

func LinkAddrFromSockaddr(sa unix.Sockaddr) (*LinkAddr, error) {
	dl, ok := sa.(*LinkSockaddr)
	if !ok || dl == nil {
		return nil, errs.ErrNotLinkFamily
	}
	nlen, alen := int(dl.Nlen), int(dl.Alen)
	if nlen+alen > len(dl.Data) {
		return nil, errs.ErrShortSockaddr
	}
	data := make([]byte, nlen+alen)
	for i := range data {
		data[i] = byte(dl.Data[i])
	}
	return &LinkAddr{
		Family: AF_LINK,
		Index:  int(dl.Index),
		Type:   uint16(dl.Type),
		Name:   string(data[:nlen]),
		Addr:   net.HardwareAddr(data[nlen:]),
	}, nil
}

func (that *LinkAddr) payload() []byte {
	p := make([]byte, 0, len(that.Name)+len(that.Addr))
	p = append(p, that.Name...)
	return append(p, that.Addr...)
}

// Raw builds the fixed size sockaddr_dl; name and address beyond sdl_data are cut.
func (that *LinkAddr) Raw() SockaddrDl {
	raw := SockaddrDl{
		Len:    SizeofSockaddrDl,
		Family: AF_LINK,
		Index:  uint16(that.Index),
		Type:   uint8(that.Type),
	}
	p := that.payload()
	if len(p) > len(raw.Data) {
		p = p[:len(raw.Data)]
	}
	nlen := len(that.Name)
	if nlen > len(p) {
		nlen = len(p)
	}
	raw.Nlen, raw.Alen = uint8(nlen), uint8(len(p)-nlen)
	for i, c := range p {
		raw.Data[i] = int8(c)
	}
	return raw
}

// Bytes encodes the variable length sockaddr_dl without truncation.
func (that *LinkAddr) Bytes() []byte {
	p := that.payload()
	size := sockaddrDlHeader + len(p)
	if size < SizeofSockaddrDl {
		size = SizeofSockaddrDl
	}
	b := make([]byte, size)
	b[0], b[1] = uint8(size), AF_LINK
	binary.NativeEndian.PutUint16(b[2:4], uint16(that.Index))
	b[4], b[5], b[6] = uint8(that.Type), uint8(len(that.Name)), uint8(len(that.Addr))
	copy(b[sockaddrDlHeader:], p)
	return b
}

func (that *LinkAddr) Sockaddr() unix.Sockaddr {
	raw := that.Raw()
	return &LinkSockaddr{
		Len:    raw.Len,
		Family: raw.Family,
		Index:  raw.Index,
		Type:   raw.Type,
		Nlen:   raw.Nlen,
		Alen:   raw.Alen,
		Slen:   raw.Slen,
		Data:   raw.Data,
	}
}
