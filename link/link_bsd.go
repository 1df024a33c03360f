//go:build darwin || freebsd

package link

import (
	"net"

	"github.com/pkg/errors"
	"golang.org/x/net/route"
	"golang.org/x/sys/unix"

	"github.com/moqsien/sxnet/sys"
)

// toFlags converts IFF_* bits to net.Flags.
func toFlags(raw int) (f net.Flags) {
	if raw&unix.IFF_UP != 0 {
		f |= net.FlagUp
	}
	if raw&unix.IFF_BROADCAST != 0 {
		f |= net.FlagBroadcast
	}
	if raw&unix.IFF_LOOPBACK != 0 {
		f |= net.FlagLoopback
	}
	if raw&unix.IFF_POINTOPOINT != 0 {
		f |= net.FlagPointToPoint
	}
	if raw&unix.IFF_MULTICAST != 0 {
		f |= net.FlagMulticast
	}
	if raw&unix.IFF_RUNNING != 0 {
		f |= net.FlagRunning
	}
	return
}

func interfaces() ([]*Interface, error) {
	rib, err := route.FetchRIB(unix.AF_UNSPEC, route.RIBTypeInterface, 0)
	if err != nil {
		return nil, errors.Wrap(err, "fetch interface rib")
	}
	msgs, err := route.ParseRIB(route.RIBTypeInterface, rib)
	if err != nil {
		return nil, errors.Wrap(err, "parse interface rib")
	}

	byIndex := make(map[int]*Interface)
	var result []*Interface
	for _, m := range msgs {
		switch v := m.(type) {
		case *route.InterfaceMessage:
			ifi := &Interface{
				Index: v.Index,
				Name:  v.Name,
				Flags: toFlags(v.Flags),
				Link:  &sys.LinkAddr{Family: sys.AF_LINK, Index: v.Index, Name: v.Name},
			}
			for _, s := range v.Sys() {
				if metrics, ok := s.(*route.InterfaceMetrics); ok {
					ifi.MTU = metrics.MTU
					ifi.Link.Type = uint16(metrics.Type)
				}
			}
			if len(v.Addrs) > unix.RTAX_IFP {
				if la, ok := v.Addrs[unix.RTAX_IFP].(*route.LinkAddr); ok && len(la.Addr) > 0 {
					ifi.HardwareAddr = net.HardwareAddr(la.Addr)
					ifi.Link.Addr = ifi.HardwareAddr
				}
			}
			byIndex[v.Index] = ifi
			result = append(result, ifi)
		case *route.InterfaceAddrMessage:
			ifi, ok := byIndex[v.Index]
			if !ok || len(v.Addrs) <= unix.RTAX_IFA {
				continue
			}
			switch a := v.Addrs[unix.RTAX_IFA].(type) {
			case *route.Inet4Addr:
				ifi.Addrs = append(ifi.Addrs, ipAddress(net.IP(a.IP[:])))
			case *route.Inet6Addr:
				ifi.Addrs = append(ifi.Addrs, ipAddress(net.IP(a.IP[:])))
			}
		}
	}
	return result, nil
}
