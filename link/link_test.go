//go:build linux || darwin || freebsd

package link

import (
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/sys"
)

func loopback(t *testing.T) *Interface {
	all, err := Interfaces()
	require.NoError(t, err)
	for _, ifi := range all {
		if ifi.IsLoopback() {
			return ifi
		}
	}
	t.Skip("no loopback interface")
	return nil
}

func TestLoopbackIsEnumerated(t *testing.T) {
	lo := loopback(t)
	require.NotNil(t, lo.Link)
	assert.Equal(t, uint16(sys.AF_LINK), lo.Link.Family)
	assert.Equal(t, lo.Index, lo.Link.Index)
	assert.True(t, sys.IsLinkFamily(int(lo.Link.Family)))

	var hasLoopbackIP bool
	for _, a := range lo.Addrs {
		if a.IP.IsLoopback() {
			hasLoopbackIP = true
		}
	}
	assert.True(t, hasLoopbackIP)
}

func TestByNameAndIndex(t *testing.T) {
	lo := loopback(t)

	byName, err := ByName(lo.Name)
	require.NoError(t, err)
	assert.Equal(t, lo.Index, byName.Index)

	byIndex, err := ByIndex(lo.Index)
	require.NoError(t, err)
	assert.Equal(t, lo.Name, byIndex.Name)

	_, err = ByName("sxnet-does-not-exist0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrivateAddrs(t *testing.T) {
	ifi := &Interface{Addrs: []*addr.Address{
		ipAddress(net.ParseIP("192.168.10.1")),
		ipAddress(net.ParseIP("1.1.1.1")),
	}}
	private := ifi.PrivateAddrs()
	require.Len(t, private, 1)
	assert.Equal(t, "192.168.10.1", private[0].IPAddress())
}

func TestMarshalJSON(t *testing.T) {
	ifi := &Interface{
		Index: 3, Name: "eth9", MTU: 1500, Flags: net.FlagUp,
		HardwareAddr: net.HardwareAddr{0, 1, 2, 3, 4, 5},
		Link:         &sys.LinkAddr{Family: uint16(sys.AF_LINK), Index: 3, Type: 1},
		Addrs:        []*addr.Address{ipAddress(net.ParseIP("10.0.0.1"))},
	}
	b, err := json.Marshal(ifi)
	require.NoError(t, err)
	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &view))
	assert.Equal(t, "eth9", view["name"])
	assert.Equal(t, "00:01:02:03:04:05", view["hardware_addr"])
	assert.Equal(t, []interface{}{"10.0.0.1"}, view["addrs"])
	assert.Equal(t, "up", view["flags"])
}
