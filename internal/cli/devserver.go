package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iviweb/internal/devserver"
	"iviweb/internal/system"
)

func init() {
	rootCmd.AddCommand(devserverCmd)
	devserverCmd.Flags().StringP("addr", "a", "", "address to bind (host:port, default from settings)")
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Start the local form-testing HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = settings.DevServer.Addr
		}
		srv := &devserver.Server{Addr: addr, ContentDir: settings.ContentDir}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		system.Logger.Info("starting devserver", "url", "http://"+addr+"/")
		return srv.Start(ctx)
	},
}
