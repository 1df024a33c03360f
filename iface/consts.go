package iface

const (
	ConnAsyncWriteAdapter  ConnAdapter = 0
	ConnNoneAdapter        ConnAdapter = 1
	ConnWritevAdapter      ConnAdapter = 2
	ConnAsyncWritevAdapter ConnAdapter = 3
)

const (
	RoundRobinLB Balancer = 0
	LeastConnLB  Balancer = 1
)

const (
	MaxStreamBufferCap int = 64 << 10
	DefaultReadBuffer  int = 16 << 10
	IovMax             int = 1024
	MaxTasks           int = 256
	DefaultBacklog     int = 50
)

func (that Balancer) String() string {
	switch that {
	case LeastConnLB:
		return "least-conn"
	default:
		return "round-robin"
	}
}

// ParseBalancer maps a config value to a Balancer, unknown names fall back to round robin.
func ParseBalancer(name string) Balancer {
	if name == LeastConnLB.String() {
		return LeastConnLB
	}
	return RoundRobinLB
}
