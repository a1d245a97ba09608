// Package cmd wires the tripmind binaries together: the interactive chat
// client, the HTTP gateway, and the maintenance subcommands.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfarerlabs/tripmind/pkg/config"
	logx "github.com/wayfarerlabs/tripmind/pkg/logger"
)

var (
	envFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "tripmind",
	Short: "tripmind - travel assistant with persistent memory",
	PersistentPreRun: func(*cobra.Command, []string) {
		logCfg := config.MustLoad[logx.Config]("TRIPMIND_LOG", envFile)
		if debug {
			logCfg.Debug = true
		}
		logx.Init(*logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
