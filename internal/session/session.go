package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"iviweb/internal/markup"
	"iviweb/internal/pages"
	"iviweb/internal/screen"
	"iviweb/internal/source"
	"iviweb/internal/system"
)

// Control inputs recognised on a line of their own or anywhere in it.
const (
	ctrlC  = "\x03"
	ctrlQ  = "\x11"
	escape = "\x1b"
)

// Config holds the per-server session settings.
type Config struct {
	StartPage    string
	Width        int
	Height       int
	ScrollSpeed  float64
	Keys         screen.Keymap
	FetchTimeout time.Duration
}

// Server runs interactive sessions over any byte stream. One Server is
// shared by every connection; each session owns its scene.
type Server struct {
	cfg     Config
	loader  *source.Loader
	watcher *source.Watcher
	canned  map[string]*markup.Node
}

// NewServer parses the canned pages once. watcher may be nil.
func NewServer(ctx context.Context, cfg Config, loader *source.Loader, watcher *source.Watcher) (*Server, error) {
	if cfg.StartPage == "" {
		cfg.StartPage = pages.Start
	}
	if cfg.Keys == (screen.Keymap{}) {
		cfg.Keys = screen.DefaultKeymap()
	}
	s := &Server{cfg: cfg, loader: loader, watcher: watcher, canned: map[string]*markup.Node{}}
	for _, name := range []string{pages.Loading, pages.Error, pages.RootError} {
		doc, err := loader.LoadDocument(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		s.canned[name] = doc
	}
	return s, nil
}

// Options describe one client connection.
type Options struct {
	Remote string
	// Width and Height override the configured screen size when positive,
	// e.g. from an SSH pty request.
	Width  int
	Height int
}

type session struct {
	srv     *Server
	id      string
	log     *log.Logger
	w       io.Writer
	in      *lineReader
	opts    screen.Options
	scene   *screen.Scene
	loaded  string
	version uint64
}

// Serve runs one session until the client quits, the stream fails or ctx
// is cancelled. A clean quit or EOF returns nil.
func (s *Server) Serve(ctx context.Context, rw io.ReadWriter, o Options) error {
	sess := &session{
		srv: s,
		id:  uuid.NewString(),
		w:   rw,
		in:  newLineReader(rw),
		opts: screen.Options{
			Width:       s.cfg.Width,
			Height:      s.cfg.Height,
			ScrollSpeed: s.cfg.ScrollSpeed,
			Keys:        s.cfg.Keys,
		},
	}
	if o.Width > 0 {
		sess.opts.Width = o.Width
	}
	if o.Height > 0 {
		sess.opts.Height = o.Height
	}
	sess.log = system.Logger.With("session", sess.id)
	sess.log.Info("session started", "remote", o.Remote, "width", sess.opts.Width, "height", sess.opts.Height)
	defer sess.log.Info("session ended")

	if err := sess.open(ctx, s.cfg.StartPage); err != nil {
		sess.log.Error("start page failed", "source", s.cfg.StartPage, "err", err)
		sess.showCanned(pages.RootError)
	}
	err := sess.loop(ctx)
	if errors.Is(err, io.EOF) || errors.Is(err, errQuit) || ctx.Err() != nil {
		return nil
	}
	return err
}

var errQuit = errors.New("client quit")

func (ss *session) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ss.write(screen.ClearScreen); err != nil {
			return err
		}
		if ss.needsReload() {
			if err := ss.writeLines(ss.cannedScene(pages.Loading)); err != nil {
				return err
			}
			target := source.Resolve(ss.loaded, ss.scene.Source())
			if err := ss.open(ctx, target); err != nil {
				ss.log.Warn("load failed", "source", target, "err", err)
				ss.showCanned(pages.Error)
			}
			continue
		}
		if err := ss.writeLines(ss.scene); err != nil {
			return err
		}
		line, err := ss.in.ReadLine()
		if err != nil {
			return err
		}
		ss.log.Debug("received input", "line", fmt.Sprintf("%q", line))
		switch {
		case line == "":
			ss.scene.Update(ctx, ss.srv.cfg.Keys.Confirm)
		case strings.Contains(line, ctrlC):
			ss.log.Info("resetting to start page")
			ss.scene.SetSource(ss.srv.cfg.StartPage)
		case line == escape || strings.Contains(line, ctrlQ):
			return errQuit
		default:
			for _, key := range strings.Fields(line) {
				ss.scene.Update(ctx, key)
			}
		}
	}
}

func (ss *session) needsReload() bool {
	if ss.scene.Source() != ss.loaded || ss.scene.ForceReload() {
		return true
	}
	if w := ss.srv.watcher; w != nil && !source.IsURL(ss.loaded) {
		return w.Version(ss.loaded) != ss.version
	}
	return false
}

// open loads src into a fresh scene; on failure the current scene is kept.
func (ss *session) open(ctx context.Context, src string) error {
	if t := ss.srv.cfg.FetchTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	scene, err := ss.srv.loader.LoadScene(ctx, src, ss.opts)
	if err != nil {
		return err
	}
	ss.scene = scene
	ss.loaded = src
	ss.version = 0
	if w := ss.srv.watcher; w != nil && isLocal(src) {
		if err := w.Watch(src); err != nil {
			ss.log.Debug("cannot watch source", "source", src, "err", err)
		}
		ss.version = w.Version(src)
	}
	ss.log.Info("loaded", "source", src, "height", scene.TotalHeight())
	return nil
}

func isLocal(src string) bool {
	return !source.IsURL(src) && !strings.HasPrefix(src, "about:")
}

func (ss *session) cannedScene(name string) *screen.Scene {
	scene, err := ss.srv.loader.SceneFor(ss.srv.canned[name], name, ss.opts)
	if err != nil {
		ss.log.Error("canned page failed", "page", name, "err", err)
		scene, _ = screen.NewScene(nil, ss.opts)
	}
	return scene
}

func (ss *session) showCanned(name string) {
	ss.scene = ss.cannedScene(name)
	ss.loaded = name
	ss.version = 0
}

func (ss *session) write(s string) error {
	_, err := io.WriteString(ss.w, s)
	return err
}

func (ss *session) writeLines(scene *screen.Scene) error {
	for _, ln := range scene.TerminalLines() {
		if _, err := ss.w.Write(ln); err != nil {
			return err
		}
	}
	return nil
}
