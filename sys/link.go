//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package sys

import (
	"encoding/binary"
	"fmt"
	"net"
)

// LinkAddr is the platform neutral form of a link-layer socket address.
type LinkAddr struct {
	Family   uint16
	Index    int
	Type     uint16 // ARPHRD_* on Linux, IFT_* on BSD
	Protocol uint16 // Linux only, host byte order
	PktType  uint8  // Linux only
	Name     string // carried in sockaddr_dl on BSD, filled from the interface on Linux
	Addr     net.HardwareAddr
}

func (that *LinkAddr) String() string {
	name := that.Name
	if name == "" {
		name = fmt.Sprintf("link#%d", that.Index)
	}
	if len(that.Addr) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, that.Addr)
}

// IsLinkFamily reports whether a raw family value is AF_LINK.
func IsLinkFamily(family int) bool {
	return family == AF_LINK
}

// swap16 converts between host and network byte order.
func swap16(v uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}
