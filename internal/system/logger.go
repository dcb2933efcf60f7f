package system

import (
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger. It writes to stderr so that
// rendered frames on stdout stay clean.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "iviweb",
})

// SetLevel adjusts the shared logger from a config or flag value such as
// "debug" or "warn". Unknown values leave the level unchanged.
func SetLevel(level string) {
	level = strings.TrimSpace(level)
	if level == "" {
		return
	}
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		Logger.Warn("unknown log level", "level", level)
		return
	}
	Logger.SetLevel(lvl)
}
