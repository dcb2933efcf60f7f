package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"iviweb/internal/convert"
	"iviweb/internal/markup"
	"iviweb/internal/screen"
	"iviweb/internal/system"
)

var (
	// ErrRestricted reports a source blocked by the loading policy.
	ErrRestricted = errors.New("source restricted")
	// ErrNotFound reports a local or built-in source that does not exist.
	ErrNotFound = errors.New("source not found")
)

var urlPattern = regexp.MustCompile(`^https?://[A-Za-z0-9.\-]+(:[0-9]{1,5})?(/.*)?$`)

const aboutScheme = "about:"

// IsURL reports whether src is loaded over HTTP.
func IsURL(src string) bool { return urlPattern.MatchString(src) }

// Policy decides which sources may be loaded.
type Policy struct {
	LoadFromFiles     bool
	LoadFromURLs      bool
	RestrictFilepaths bool
	RestrictURLs      bool
	// TrustedDirs limit file loading when RestrictFilepaths is set; files
	// anywhere below a trusted directory are allowed.
	TrustedDirs []string
	// TrustedURLs limit URL loading when RestrictURLs is set; a URL is
	// trusted when it starts with one of the entries.
	TrustedURLs []string
}

func (p Policy) allowURL(u string) bool {
	if !p.LoadFromURLs {
		return false
	}
	if !p.RestrictURLs {
		return true
	}
	for _, t := range p.TrustedURLs {
		if u == t || strings.HasPrefix(u, t) {
			return true
		}
	}
	return false
}

func (p Policy) allowFile(path string) bool {
	if !p.LoadFromFiles {
		return false
	}
	if !p.RestrictFilepaths {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, d := range p.TrustedDirs {
		dir, err := filepath.Abs(d)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(dir, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Loader resolves sources to documents and scenes. It is safe for
// concurrent use.
type Loader struct {
	policy   Policy
	client   *Client
	registry *convert.Registry
	builtin  fs.FS
}

// NewLoader returns a loader. builtin serves "about:" sources and may be
// nil.
func NewLoader(policy Policy, client *Client, registry *convert.Registry, builtin fs.FS) *Loader {
	return &Loader{policy: policy, client: client, registry: registry, builtin: builtin}
}

// Registry returns the converter registry scenes are built with.
func (l *Loader) Registry() *convert.Registry { return l.registry }

// Load returns the raw markup of src: an "about:" page, an http(s) URL or
// a file path.
func (l *Loader) Load(ctx context.Context, src string) (string, error) {
	switch {
	case strings.HasPrefix(src, aboutScheme):
		if l.builtin == nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		b, err := fs.ReadFile(l.builtin, strings.TrimPrefix(src, aboutScheme)+".html")
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return string(b), nil
	case IsURL(src):
		if !l.policy.allowURL(src) {
			system.Logger.Warn("url blocked by policy", "source", src)
			return "", fmt.Errorf("%w: %s", ErrRestricted, src)
		}
		if l.client == nil {
			return "", fmt.Errorf("%w: no http client", ErrTransport)
		}
		system.Logger.Info("loading url", "source", src)
		return l.client.Fetch(ctx, src)
	default:
		if _, err := os.Stat(src); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		if !l.policy.allowFile(src) {
			system.Logger.Warn("file blocked by policy", "source", src)
			return "", fmt.Errorf("%w: %s", ErrRestricted, src)
		}
		system.Logger.Info("loading file", "source", src)
		b, err := os.ReadFile(filepath.Clean(src))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", src, err)
		}
		return string(b), nil
	}
}

// LoadDocument loads and parses src.
func (l *Loader) LoadDocument(ctx context.Context, src string) (*markup.Node, error) {
	content, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := markup.ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", convert.ErrStructure, err)
	}
	return doc, nil
}

// LoadScene loads src and builds a scene for it. Form endpoints in the
// scene are resolved against src.
func (l *Loader) LoadScene(ctx context.Context, src string, opts screen.Options) (*screen.Scene, error) {
	doc, err := l.LoadDocument(ctx, src)
	if err != nil {
		return nil, err
	}
	return l.SceneFor(doc, src, opts)
}

// SceneFor builds a scene for an already parsed document.
func (l *Loader) SceneFor(doc *markup.Node, src string, opts screen.Options) (*screen.Scene, error) {
	opts.Source = src
	if opts.Submitter == nil && l.client != nil {
		opts.Submitter = relativeSubmitter{client: l.client, base: src}
	}
	return l.registry.ToScene(doc, opts)
}

// relativeSubmitter resolves form endpoints against the page they came from.
type relativeSubmitter struct {
	client *Client
	base   string
}

func (s relativeSubmitter) Submit(ctx context.Context, endpoint, method string, fields url.Values) (string, error) {
	target := Resolve(s.base, endpoint)
	if !IsURL(target) {
		return "", fmt.Errorf("%w: cannot submit to %q", ErrTransport, endpoint)
	}
	return s.client.Submit(ctx, target, method, fields)
}

// Resolve interprets ref relative to base: URLs resolve against URLs,
// relative paths against the directory of a file base. Absolute sources
// and "about:" pages are returned unchanged.
func Resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == "" || IsURL(ref) || strings.HasPrefix(ref, aboutScheme) {
		return ref
	}
	if IsURL(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	if strings.HasPrefix(base, aboutScheme) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(base), ref)
}
