//go:build linux || darwin || freebsd

package dns

import (
	"context"
	"net"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/utils/errs"
)

// startServer answers A and AAAA queries for sxnet.test. and nothing else.
func startServer(t *testing.T) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &mdns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: mdns.HandlerFunc(func(w mdns.ResponseWriter, req *mdns.Msg) {
			m := new(mdns.Msg)
			m.SetReply(req)
			q := req.Question[0]
			if q.Name == "sxnet.test." {
				switch q.Qtype {
				case mdns.TypeA:
					rr, _ := mdns.NewRR("sxnet.test. 60 IN A 10.0.0.7")
					m.Answer = append(m.Answer, rr)
				case mdns.TypeAAAA:
					rr, _ := mdns.NewRR("sxnet.test. 60 IN AAAA fd00::7")
					m.Answer = append(m.Answer, rr)
				}
			} else {
				m.Rcode = mdns.RcodeNameError
			}
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestLookupWithServer(t *testing.T) {
	server := startServer(t)
	ctx := context.Background()

	all, err := Lookup(ctx, "sxnet.test", "8080", WithServer(server))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "10.0.0.7:8080", all[0].String())
	assert.Equal(t, addr.Inet, all[0].Family)
	assert.Equal(t, "[fd00::7]:8080", all[1].String())

	all, err = LookupPort(ctx, "sxnet.test", 53, WithServer(server), WithFamily(addr.Inet6))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, addr.Inet6, all[0].Domain())
}

func TestLookupOnceEmpty(t *testing.T) {
	server := startServer(t)
	_, err := LookupPortOnce(context.Background(), "missing.test", 80, WithServer(server))
	assert.ErrorIs(t, err, errs.ErrNoAddress)

	a, err := LookupOnce(context.Background(), "sxnet.test", "1", WithServer(server), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7:1", a.String())
}

func TestLookupLiteral(t *testing.T) {
	a, err := LookupPortOnce(context.Background(), "127.0.0.1", 9)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9", a.String())

	_, err = LookupPortOnce(context.Background(), "127.0.0.1", 9, WithFamily(addr.Inet6))
	assert.ErrorIs(t, err, errs.ErrNoAddress)
}

func TestLookupServiceName(t *testing.T) {
	port, err := lookupService(context.Background(), "443", newHints(nil))
	require.NoError(t, err)
	assert.Equal(t, uint16(443), port)

	_, err = Lookup(context.Background(), "127.0.0.1", "no-such-service-sxnet")
	assert.Error(t, err)
}
