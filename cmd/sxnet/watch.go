package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>...",
	Short: "Print file events until interrupted",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			w   watch.Watcher
			err error
		)
		if cfg.Watch.Portable {
			w, err = watch.NewPortable()
		} else {
			w, err = watch.New()
		}
		if err != nil {
			return err
		}
		events := watch.ParseEvents(cfg.Watch.Events)
		for _, path := range args {
			err = w.Monitor(path, events, func(path string, ev watch.Events) bool {
				fmt.Printf("%s %s %s\n", time.Now().Format(time.RFC3339), path, ev)
				return ev&watch.Deleted != 0
			})
			if err != nil {
				w.Close()
				return err
			}
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sig
			w.Close()
		}()
		return w.Run()
	},
}

func init() {
	watchCmd.Flags().Bool("portable", false, "use fsnotify instead of the native watcher")
	watchCmd.Flags().StringSlice("events", nil, "events to report, all when empty")
	bindFlag(watchCmd, "portable", "watch.portable")
	bindFlag(watchCmd, "events", "watch.events")
}
