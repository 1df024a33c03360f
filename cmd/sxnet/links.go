package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moqsien/sxnet/link"
)

var linksJSON bool

var linksCmd = &cobra.Command{
	Use:   "links [name]",
	Short: "List network interfaces with their link-layer addresses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var all []*link.Interface
		if len(args) == 1 {
			ifi, err := link.ByName(args[0])
			if err != nil {
				return err
			}
			all = append(all, ifi)
		} else {
			var err error
			if all, err = link.Interfaces(); err != nil {
				return err
			}
		}
		if linksJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(all)
		}
		for _, ifi := range all {
			fmt.Printf("%d: %s mtu %d <%s>\n", ifi.Index, ifi.Name, ifi.MTU, ifi.Flags)
			if ifi.Link != nil {
				fmt.Printf("    link family %d type %d %s\n", ifi.Link.Family, ifi.Link.Type, ifi.HardwareAddr)
			}
			addrs := make([]string, 0, len(ifi.Addrs))
			for _, a := range ifi.Addrs {
				s := a.IPAddress()
				if a.IsPrivate() {
					s += " (private)"
				}
				addrs = append(addrs, s)
			}
			if len(addrs) > 0 {
				fmt.Printf("    %s\n", strings.Join(addrs, ", "))
			}
		}
		return nil
	},
}

func init() {
	linksCmd.Flags().BoolVar(&linksJSON, "json", false, "print JSON")
}
