package pages

import (
	"embed"
	"io/fs"
)

//go:embed site/*.html
var siteDir embed.FS

//go:embed templates/*.html
var templateDir embed.FS

// Site holds the built-in pages served under the about: scheme.
var Site, _ = fs.Sub(siteDir, "site")

// Templates holds the dev server's page templates.
var Templates, _ = fs.Sub(templateDir, "templates")

// Names of the canned pages shown by sessions.
const (
	Start     = "about:start"
	Loading   = "about:loading"
	Error     = "about:error"
	RootError = "about:root_error"
)
