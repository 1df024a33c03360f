package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moqsien/sxnet/config"
)

var (
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sxnet",
	Short: "Link-layer aware socket toolkit",
	Long: `sxnet lists interfaces with their link-layer addresses, resolves names,
watches files and runs small event loop servers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if v, err = config.NewViper(cfgFile); err != nil {
			return err
		}
		if err = bindFlags(cmd); err != nil {
			return err
		}
		cfg, err = config.Load(v)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (toml, yaml or json)")
	rootCmd.AddCommand(linksCmd, lookupCmd, oneshotCmd, watchCmd, serveCmd, adminCmd, versionCmd)
}

// flagKeys maps command flags to config keys, flags win over file and environment.
var flagKeys = map[*cobra.Command]map[string]string{}

func bindFlag(cmd *cobra.Command, flag, key string) {
	if flagKeys[cmd] == nil {
		flagKeys[cmd] = map[string]string{}
	}
	flagKeys[cmd][flag] = key
}

func bindFlags(cmd *cobra.Command) error {
	for flag, key := range flagKeys[cmd] {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
