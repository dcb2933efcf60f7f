package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"iviweb/internal/app"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "listen host (default from settings)")
	serveCmd.Flags().Int("port", 0, "telnet port (default from settings)")
	serveCmd.Flags().Int("ssh-port", 0, "SSH port; 0 keeps the settings value")
	serveCmd.Flags().Bool("watch", true, "reload sessions when local pages change")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve pages to telnet and SSH clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings
		if v, _ := cmd.Flags().GetString("host"); v != "" {
			s.Listen.Host = v
		}
		if v, _ := cmd.Flags().GetInt("port"); v > 0 {
			s.Listen.Port = v
		}
		if v, _ := cmd.Flags().GetInt("ssh-port"); v > 0 {
			s.Listen.SSHPort = v
		}
		watch, _ := cmd.Flags().GetBool("watch")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := app.New(s, watch)
		if err != nil {
			return err
		}
		defer a.Close()
		srv, err := a.SessionServer(ctx)
		if err != nil {
			return fmt.Errorf("prepare sessions: %w", err)
		}

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		run := func(f func() error) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := f(); err != nil {
					errs <- err
					cancel()
				}
			}()
		}
		telnetAddr := net.JoinHostPort(s.Listen.Host, strconv.Itoa(s.Listen.Port))
		run(func() error { return srv.ListenAndServe(ctx, telnetAddr) })
		if s.Listen.SSHPort > 0 {
			sshAddr := net.JoinHostPort(s.Listen.Host, strconv.Itoa(s.Listen.SSHPort))
			run(func() error { return srv.ListenAndServeSSH(ctx, sshAddr, s.Listen.HostKeyPath) })
		}
		wg.Wait()
		close(errs)
		return <-errs
	},
}
