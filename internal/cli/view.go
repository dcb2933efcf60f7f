package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iviweb/internal/app"
	"iviweb/internal/tui"
)

func init() {
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view [source]",
	Short: "Browse a page interactively in this terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(settings, false)
		if err != nil {
			return err
		}
		start := settings.StartPage
		if len(args) == 1 {
			start = args[0]
		}
		return tui.Run(ctx, a.Loader, start, a.ScreenOptions())
	},
}
