//go:build linux || darwin || freebsd

// Package dns resolves host and service names to socket addresses.
package dns

import (
	"context"
	"net"
	"strconv"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/pkg/errors"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/utils/errs"
)

const DefaultTimeout = 5 * time.Second

type hints struct {
	family   addr.Domain
	sockType addr.SocketType
	server   string
	timeout  time.Duration
}

type Hint func(*hints)

// WithFamily restricts results to addr.Inet or addr.Inet6.
func WithFamily(family addr.Domain) Hint {
	return func(h *hints) { h.family = family }
}

// WithSockType selects the protocol used to resolve a named service.
func WithSockType(t addr.SocketType) Hint {
	return func(h *hints) { h.sockType = t }
}

// WithServer sends A and AAAA queries to server ("host:port") instead of the system resolver.
func WithServer(server string) Hint {
	return func(h *hints) { h.server = server }
}

func WithTimeout(d time.Duration) Hint {
	return func(h *hints) { h.timeout = d }
}

func newHints(opts []Hint) *hints {
	h := &hints{family: addr.Unspec, sockType: addr.Stream, timeout: DefaultTimeout}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (that *hints) wants(family addr.Domain) bool {
	return that.family == addr.Unspec || that.family == family
}

func (that *hints) network() string {
	if that.sockType == addr.Dgram {
		return "udp"
	}
	return "tcp"
}

func lookupService(ctx context.Context, service string, h *hints) (uint16, error) {
	if port, err := strconv.ParseUint(service, 10, 16); err == nil {
		return uint16(port), nil
	}
	port, err := net.DefaultResolver.LookupPort(ctx, h.network(), service)
	if err != nil {
		return 0, errors.Wrapf(err, "lookup service %q", service)
	}
	return uint16(port), nil
}

func (that *hints) query(ctx context.Context, hostname string) (ips []net.IP, err error) {
	client := &mdns.Client{Timeout: that.timeout}
	var types []uint16
	if that.wants(addr.Inet) {
		types = append(types, mdns.TypeA)
	}
	if that.wants(addr.Inet6) {
		types = append(types, mdns.TypeAAAA)
	}
	for _, qtype := range types {
		m := new(mdns.Msg)
		m.SetQuestion(mdns.Fqdn(hostname), qtype)
		r, _, err := client.ExchangeContext(ctx, m, that.server)
		if err != nil {
			return nil, errors.Wrapf(err, "query %s %s at %s", mdns.TypeToString[qtype], hostname, that.server)
		}
		if r.Rcode != mdns.RcodeSuccess && r.Rcode != mdns.RcodeNameError {
			return nil, errors.Errorf("query %s %s at %s: %s", mdns.TypeToString[qtype], hostname, that.server, mdns.RcodeToString[r.Rcode])
		}
		for _, rr := range r.Answer {
			switch v := rr.(type) {
			case *mdns.A:
				ips = append(ips, v.A)
			case *mdns.AAAA:
				ips = append(ips, v.AAAA)
			}
		}
	}
	return ips, nil
}

func (that *hints) resolve(ctx context.Context, hostname string) ([]net.IP, error) {
	if ip := net.ParseIP(hostname); ip != nil {
		return []net.IP{ip}, nil
	}
	if that.server != "" {
		return that.query(ctx, hostname)
	}
	ipAddrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup %s", hostname)
	}
	ips := make([]net.IP, 0, len(ipAddrs))
	for _, a := range ipAddrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

func lookup(ctx context.Context, hostname string, port uint16, h *hints) ([]*addr.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	ips, err := h.resolve(ctx, hostname)
	if err != nil {
		return nil, err
	}
	var result []*addr.Address
	for _, ip := range ips {
		family := addr.Inet6
		if ip4 := ip.To4(); ip4 != nil {
			family, ip = addr.Inet, ip4
		}
		if !h.wants(family) {
			continue
		}
		result = append(result, &addr.Address{Family: family, IP: ip, Port: port})
	}
	return result, nil
}

// Lookup resolves hostname and service (a port number or a name from the
// services database) to inet and inet6 addresses in resolver order.
func Lookup(ctx context.Context, hostname, service string, opts ...Hint) ([]*addr.Address, error) {
	h := newHints(opts)
	port, err := lookupService(ctx, service, h)
	if err != nil {
		return nil, err
	}
	return lookup(ctx, hostname, port, h)
}

// LookupOnce returns the first address Lookup finds.
func LookupOnce(ctx context.Context, hostname, service string, opts ...Hint) (*addr.Address, error) {
	return first(Lookup(ctx, hostname, service, opts...))
}

func LookupPort(ctx context.Context, hostname string, port uint16, opts ...Hint) ([]*addr.Address, error) {
	return lookup(ctx, hostname, port, newHints(opts))
}

func LookupPortOnce(ctx context.Context, hostname string, port uint16, opts ...Hint) (*addr.Address, error) {
	return first(LookupPort(ctx, hostname, port, opts...))
}

func first(all []*addr.Address, err error) (*addr.Address, error) {
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, errs.ErrNoAddress
	}
	return all[0], nil
}
