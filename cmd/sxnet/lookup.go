package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/dns"
)

var lookupUDP bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <host> <service|port>",
	Short: "Resolve a host and service to socket addresses",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hints := dnsHints()
		if lookupUDP {
			hints = append(hints, dns.WithSockType(addr.Dgram))
		}
		all, err := dns.Lookup(context.Background(), args[0], args[1], hints...)
		if err != nil {
			return err
		}
		for _, a := range all {
			fmt.Printf("%-6s %s\n", a.Domain(), a)
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().String("server", "", "nameserver host:port, the system resolver when empty")
	lookupCmd.Flags().String("family", "", "inet or inet6")
	lookupCmd.Flags().BoolVar(&lookupUDP, "udp", false, "resolve the service for udp")
	bindFlag(lookupCmd, "server", "dns.server")
	bindFlag(lookupCmd, "family", "dns.family")
}

// dnsHints turns the dns config section into lookup hints.
func dnsHints() []dns.Hint {
	hints := []dns.Hint{dns.WithTimeout(cfg.DNS.Timeout)}
	if cfg.DNS.Server != "" {
		hints = append(hints, dns.WithServer(cfg.DNS.Server))
	}
	switch cfg.DNS.Family {
	case "inet":
		hints = append(hints, dns.WithFamily(addr.Inet))
	case "inet6":
		hints = append(hints, dns.WithFamily(addr.Inet6))
	}
	return hints
}
