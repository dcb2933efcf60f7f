package session

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/gliderlabs/ssh"

	"iviweb/internal/system"
)

// ListenAndServe accepts raw TCP (telnet) clients on addr until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	system.Logger.Info("telnet listener started", "addr", ln.Addr().String())
	return s.ServeListener(ctx, ln)
}

// ServeListener runs one session per accepted connection. Cancelling ctx
// closes the listener and every open connection, then waits for the
// sessions to finish.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			release := context.AfterFunc(ctx, func() { _ = conn.Close() })
			defer release()
			if err := s.Serve(ctx, conn, Options{Remote: conn.RemoteAddr().String()}); err != nil {
				system.Logger.Warn("session failed", "remote", conn.RemoteAddr().String(), "err", err)
			}
		}()
	}
}

// NewSSHServer returns an SSH server whose sessions run the same loop as
// telnet clients. The pty size, when requested, sets the screen size. An
// empty hostKeyPath uses a generated key.
func (s *Server) NewSSHServer(addr, hostKeyPath string) (*ssh.Server, error) {
	srv := &ssh.Server{
		Addr: addr,
		Handler: func(sess ssh.Session) {
			o := Options{Remote: sess.RemoteAddr().String()}
			if pty, _, ok := sess.Pty(); ok {
				o.Width, o.Height = pty.Window.Width, pty.Window.Height
			}
			rw := struct {
				io.Reader
				io.Writer
			}{io.TeeReader(sess, echo{sess}), sess}
			if err := s.Serve(sess.Context(), rw, o); err != nil {
				system.Logger.Warn("ssh session failed", "user", sess.User(), "err", err)
			}
			_ = sess.Exit(0)
		},
	}
	if hostKeyPath != "" {
		if err := srv.SetOption(ssh.HostKeyFile(hostKeyPath)); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

// ListenAndServeSSH serves SSH clients on addr until ctx is cancelled.
func (s *Server) ListenAndServeSSH(ctx context.Context, addr, hostKeyPath string) error {
	srv, err := s.NewSSHServer(addr, hostKeyPath)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = srv.Close() })
	defer stop()
	system.Logger.Info("ssh listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// echo writes typed input back to a raw-mode terminal.
type echo struct{ w io.Writer }

func (e echo) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p))
	for _, b := range p {
		switch {
		case b == '\r':
			out = append(out, '\r', '\n')
		case b >= 0x20 && b < 0x7f:
			out = append(out, b)
		}
	}
	if len(out) > 0 {
		if _, err := e.w.Write(out); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
