package balancer

import (
	"net"

	"github.com/moqsien/sxnet/iface"
)

type LeastConn struct {
	eloopList []iface.IELoop
	size      int
}

func (that *LeastConn) Len() int { return that.size }

func (that *LeastConn) Iterator(f iface.BalancerIterFunc) {
	var ok bool
	for k, v := range that.eloopList {
		ok = f(k, v)
		if !ok {
			break
		}
	}
}

func (that *LeastConn) Register(e iface.IELoop) {
	that.eloopList = append(that.eloopList, e)
	that.size++
}

// Next picks the loop with the fewest connections, the first one wins a tie.
func (that *LeastConn) Next(addr ...net.Addr) (e iface.IELoop) {
	if that.size == 0 {
		return nil
	}
	min := that.eloopList[0]
	for _, v := range that.eloopList {
		if v.GetConnCount() < min.GetConnCount() {
			min = v
		}
	}
	return min
}
