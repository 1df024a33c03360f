package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/addr"
	"github.com/moqsien/sxnet/socket"
)

var (
	oneshotUnix    bool
	oneshotSize    int
	oneshotTimeout time.Duration
)

var oneshotCmd = &cobra.Command{
	Use:   "oneshot <host> <service|port> <request> | --unix <path> <request>",
	Short: "Send one request and print the response",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var resp []byte
		if oneshotUnix {
			resp, err = socket.OneshotUnix(args[0], addr.Stream, []byte(args[1]), oneshotSize, oneshotTimeout)
		} else {
			if len(args) != 3 {
				return cmd.Usage()
			}
			resp, err = socket.Oneshot(context.Background(), args[0], args[1], []byte(args[2]), oneshotSize, oneshotTimeout, dnsHints()...)
		}
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(resp)
		return err
	},
}

func init() {
	f := oneshotCmd.Flags()
	f.BoolVar(&oneshotUnix, "unix", false, "connect to a unix socket path")
	f.IntVar(&oneshotSize, "size", 0, "largest response to read")
	f.DurationVar(&oneshotTimeout, "timeout", 5*time.Second, "read and write timeout")
	f.String("server", "", "nameserver host:port, the system resolver when empty")
	f.String("family", "", "inet or inet6")
	bindFlag(oneshotCmd, "server", "dns.server")
	bindFlag(oneshotCmd, "family", "dns.family")
}
