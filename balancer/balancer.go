package balancer

import "github.com/moqsien/sxnet/iface"

// New returns the balancer selected by lb.
func New(lb iface.Balancer) iface.IBalancer {
	switch lb {
	case iface.LeastConnLB:
		return &LeastConn{}
	default:
		return &RoundRobin{}
	}
}
