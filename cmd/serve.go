package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wayfarerlabs/tripmind/gateway"
	"github.com/wayfarerlabs/tripmind/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	serverCfg, err := config.Load[gateway.Config]("TRIPMIND_GATEWAY", envFile)
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := gateway.NewServer(*serverCfg, a.manager, a.counter)
	return srv.Run(ctx)
}
