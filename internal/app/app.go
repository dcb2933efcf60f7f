// Package app wires settings into the loader, scene options and session
// server shared by the CLI commands.
package app

import (
	"context"
	"path/filepath"

	"iviweb/internal/config"
	"iviweb/internal/convert"
	"iviweb/internal/pages"
	"iviweb/internal/screen"
	"iviweb/internal/session"
	"iviweb/internal/source"
	"iviweb/internal/system"
)

// App holds the long-lived collaborators built from one Settings value.
type App struct {
	Settings config.Settings
	Loader   *source.Loader
	Watcher  *source.Watcher
}

// New builds the registry, client and loader. The watcher is started only
// when watch is true.
func New(s config.Settings, watch bool) (*App, error) {
	reg := convert.NewRegistry(convert.Options{
		ScreenWidth:    s.ScreenWidth,
		ScreenHeight:   s.ScreenHeight,
		WindowTitleOSC: s.WindowTitleOSC,
	})
	a := &App{
		Settings: s,
		Loader:   source.NewLoader(Policy(s), source.NewClient(s.FetchTimeout), reg, pages.Site),
	}
	if watch {
		w, err := source.NewWatcher()
		if err != nil {
			return nil, err
		}
		a.Watcher = w
	}
	return a, nil
}

// Policy derives the loading policy. The content directory is always
// trusted.
func Policy(s config.Settings) source.Policy {
	trusted := append([]string(nil), s.TrustedDirs...)
	if s.ContentDir != "" {
		if abs, err := filepath.Abs(s.ContentDir); err == nil {
			trusted = append(trusted, abs)
		} else {
			trusted = append(trusted, s.ContentDir)
		}
	}
	return source.Policy{
		LoadFromFiles:     s.LoadFromFiles,
		LoadFromURLs:      s.LoadFromURLs,
		RestrictFilepaths: s.RestrictFilepaths,
		RestrictURLs:      s.RestrictURLs,
		TrustedDirs:       trusted,
		TrustedURLs:       s.TrustedURLs,
	}
}

// ScreenOptions returns scene options for the configured screen.
func (a *App) ScreenOptions() screen.Options {
	return screen.Options{
		Width:       a.Settings.ScreenWidth,
		Height:      a.Settings.ScreenHeight,
		ScrollSpeed: a.Settings.ScrollSpeed,
		Keys:        a.Settings.Keys,
	}
}

// SessionServer builds the shared session server.
func (a *App) SessionServer(ctx context.Context) (*session.Server, error) {
	return session.NewServer(ctx, session.Config{
		StartPage:    a.Settings.StartPage,
		Width:        a.Settings.ScreenWidth,
		Height:       a.Settings.ScreenHeight,
		ScrollSpeed:  a.Settings.ScrollSpeed,
		Keys:         a.Settings.Keys,
		FetchTimeout: a.Settings.FetchTimeout,
	}, a.Loader, a.Watcher)
}

// Close releases the watcher, if any.
func (a *App) Close() {
	if a.Watcher == nil {
		return
	}
	if err := a.Watcher.Close(); err != nil {
		system.Logger.Warn("closing watcher", "err", err)
	}
}
