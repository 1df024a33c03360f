package link

import (
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/sys"
)

// arphrd maps netlink's encapsulation names back to ARPHRD_* values.
var arphrd = map[string]uint16{
	"ether":      unix.ARPHRD_ETHER,
	"loopback":   unix.ARPHRD_LOOPBACK,
	"none":       unix.ARPHRD_NONE,
	"ppp":        unix.ARPHRD_PPP,
	"ipip":       unix.ARPHRD_TUNNEL,
	"tunnel6":    unix.ARPHRD_TUNNEL6,
	"sit":        unix.ARPHRD_SIT,
	"gre":        unix.ARPHRD_IPGRE,
	"ip6gre":     unix.ARPHRD_IP6GRE,
	"infiniband": unix.ARPHRD_INFINIBAND,
	"ieee802.2":  unix.ARPHRD_IEEE802,
	"ieee802.11": unix.ARPHRD_IEEE80211,
}

func interfaces() ([]*Interface, error) {
	links, err := netlink.LinkList()
	if err != nil {
		return nil, errors.Wrap(err, "netlink link list")
	}
	result := make([]*Interface, 0, len(links))
	for _, l := range links {
		attrs := l.Attrs()
		typ, ok := arphrd[attrs.EncapType]
		if !ok {
			typ = unix.ARPHRD_VOID
		}
		ifi := &Interface{
			Index:        attrs.Index,
			Name:         attrs.Name,
			MTU:          attrs.MTU,
			Flags:        attrs.Flags,
			HardwareAddr: attrs.HardwareAddr,
			Link: &sys.LinkAddr{
				Family: sys.AF_LINK,
				Index:  attrs.Index,
				Type:   typ,
				Name:   attrs.Name,
				Addr:   attrs.HardwareAddr,
			},
		}
		addrs, err := netlink.AddrList(l, netlink.FAMILY_ALL)
		if err != nil {
			return nil, errors.Wrapf(err, "netlink addr list of %s", attrs.Name)
		}
		for _, a := range addrs {
			if a.IPNet != nil {
				ifi.Addrs = append(ifi.Addrs, ipAddress(a.IPNet.IP))
			}
		}
		result = append(result, ifi)
	}
	return result, nil
}
