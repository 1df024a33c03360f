//go:build linux || darwin || freebsd

// Package link enumerates network interfaces together with their
// link-layer and protocol addresses.
package link

import (
	"encoding/json"
	"net"

	"github.com/pkg/errors"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/sys"
)

var ErrNotFound = errors.New("interface not found")

type Interface struct {
	Index        int
	Name         string
	MTU          int
	Flags        net.Flags
	HardwareAddr net.HardwareAddr
	Link         *sys.LinkAddr // family is always sys.AF_LINK
	Addrs        []*addr.Address
}

// Interfaces lists every interface of the host.
func Interfaces() ([]*Interface, error) {
	return interfaces()
}

func ByName(name string) (*Interface, error) {
	all, err := interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifi := range all {
		if ifi.Name == name {
			return ifi, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "name %q", name)
}

func ByIndex(index int) (*Interface, error) {
	all, err := interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifi := range all {
		if ifi.Index == index {
			return ifi, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "index %d", index)
}

// PrivateAddrs keeps the addresses in RFC 1918 or RFC 4193 space.
func (that *Interface) PrivateAddrs() (private []*addr.Address) {
	for _, a := range that.Addrs {
		if a.IsPrivate() {
			private = append(private, a)
		}
	}
	return
}

func (that *Interface) IsLoopback() bool {
	return that.Flags&net.FlagLoopback != 0
}

func (that *Interface) MarshalJSON() ([]byte, error) {
	addrs := make([]string, 0, len(that.Addrs))
	for _, a := range that.Addrs {
		addrs = append(addrs, a.IPAddress())
	}
	view := struct {
		Index        int      `json:"index"`
		Name         string   `json:"name"`
		MTU          int      `json:"mtu"`
		Flags        string   `json:"flags"`
		HardwareAddr string   `json:"hardware_addr,omitempty"`
		LinkFamily   uint16   `json:"link_family"`
		LinkType     uint16   `json:"link_type"`
		Addrs        []string `json:"addrs"`
	}{
		Index:        that.Index,
		Name:         that.Name,
		MTU:          that.MTU,
		Flags:        that.Flags.String(),
		HardwareAddr: that.HardwareAddr.String(),
		Addrs:        addrs,
	}
	if that.Link != nil {
		view.LinkFamily, view.LinkType = that.Link.Family, that.Link.Type
	}
	return json.Marshal(view)
}

func ipAddress(ip net.IP) *addr.Address {
	if ip4 := ip.To4(); ip4 != nil {
		return &addr.Address{Family: addr.Inet, IP: ip4}
	}
	return &addr.Address{Family: addr.Inet6, IP: ip}
}
