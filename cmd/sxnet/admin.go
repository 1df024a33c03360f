package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/admin"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Serve the interface API without an engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return admin.New(nil).ListenAndServe(ctx, cfg.Admin.Address)
	},
}

func init() {
	adminCmd.Flags().String("address", "127.0.0.1:20080", "listen address")
	bindFlag(adminCmd, "address", "admin.address")
}
