//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package sys

import (
	"net"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/utils/errs"
)

func TestLinkFamilyIsNative(t *testing.T) {
	assert.Equal(t, unix.AF_LINK, AF_LINK)
	assert.Equal(t, uintptr(SizeofSockaddrDl), unsafe.Sizeof(SockaddrDl{}))
}

func TestBytesRoundTrip(t *testing.T) {
	hw, _ := net.ParseMAC("02:42:ac:11:00:02")
	la := &LinkAddr{Index: 4, Type: 6, Name: "en0", Addr: hw}

	b := la.Bytes()
	assert.EqualValues(t, AF_LINK, b[1])

	parsed, err := ParseSockaddrDl(b)
	require.NoError(t, err)
	assert.Equal(t, "en0", parsed.Name)
	assert.Equal(t, 4, parsed.Index)
	assert.EqualValues(t, 6, parsed.Type)
	assert.Equal(t, hw, parsed.Addr)
}

func TestRawKeepsFamily(t *testing.T) {
	hw, _ := net.ParseMAC("02:42:ac:11:00:02")
	raw := (&LinkAddr{Index: 1, Name: "lo0", Addr: hw}).Raw()
	assert.EqualValues(t, AF_LINK, raw.Family)
	assert.EqualValues(t, 3, raw.Nlen)
	assert.EqualValues(t, 6, raw.Alen)
}

func TestParseSockaddrDlRejects(t *testing.T) {
	_, err := ParseSockaddrDl([]byte{8, AF_LINK})
	assert.ErrorIs(t, err, errs.ErrShortSockaddr)

	b := (&LinkAddr{Index: 1, Name: "lo0"}).Bytes()
	b[1] = unix.AF_INET
	_, err = ParseSockaddrDl(b)
	assert.ErrorIs(t, err, errs.ErrNotLinkFamily)

	b = (&LinkAddr{Index: 1, Name: "lo0"}).Bytes()
	b[5] = 200 // nlen past the end
	_, err = ParseSockaddrDl(b)
	assert.ErrorIs(t, err, errs.ErrShortSockaddr)
}

func TestLinkAddrFromSockaddr(t *testing.T) {
	hw, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	la := &LinkAddr{Index: 5, Name: "en1", Addr: hw}
	back, err := LinkAddrFromSockaddr(la.Sockaddr())
	require.NoError(t, err)
	assert.Equal(t, "en1", back.Name)
	assert.Equal(t, hw, back.Addr)

	_, err = LinkAddrFromSockaddr(&unix.SockaddrInet4{})
	assert.ErrorIs(t, err, errs.ErrNotLinkFamily)
}
