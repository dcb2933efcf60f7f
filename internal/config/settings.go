package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"iviweb/internal/screen"
)

// Settings is the iviweb configuration file.
// Path: <UserConfigDir>/iviweb/config.yaml
type Settings struct {
	ScreenWidth    int     `yaml:"screen_width" json:"screen_width" jsonschema:"minimum=10,default=80"`
	ScreenHeight   int     `yaml:"screen_height" json:"screen_height" jsonschema:"minimum=2,default=24"`
	ScrollSpeed    float64 `yaml:"scroll_speed" json:"scroll_speed" jsonschema:"exclusiveMinimum=0,maximum=1,default=0.25"`
	WindowTitleOSC bool    `yaml:"window_title_osc" json:"window_title_osc" jsonschema:"description=Emit the document title as a terminal window title instead of a banner line"`
	LogLevel       string  `yaml:"log_level" json:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// StartPage is loaded for every new session; empty means the built-in
	// start page.
	StartPage string `yaml:"start_page" json:"start_page,omitempty"`
	// ContentDir holds local pages. It is trusted implicitly and served by
	// the dev server.
	ContentDir string `yaml:"content_dir" json:"content_dir" jsonschema:"default=pages"`

	LoadFromFiles     bool     `yaml:"load_from_files" json:"load_from_files" jsonschema:"default=true"`
	LoadFromURLs      bool     `yaml:"load_from_urls" json:"load_from_urls" jsonschema:"default=true"`
	RestrictFilepaths bool     `yaml:"restrict_filepaths" json:"restrict_filepaths" jsonschema:"default=true"`
	RestrictURLs      bool     `yaml:"restrict_urls" json:"restrict_urls"`
	TrustedDirs       []string `yaml:"trusted_dirs" json:"trusted_dirs,omitempty"`
	TrustedURLs       []string `yaml:"trusted_urls" json:"trusted_urls,omitempty"`
	// FetchTimeout bounds each page fetch and form submission.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	Keys      screen.Keymap `yaml:"keys" json:"keys"`
	Listen    Listen        `yaml:"listen" json:"listen"`
	DevServer DevServer     `yaml:"devserver" json:"devserver"`
}

// Listen configures the session listeners. A zero SSHPort disables SSH.
type Listen struct {
	Host        string `yaml:"host" json:"host" jsonschema:"default=0.0.0.0"`
	Port        int    `yaml:"port" json:"port" jsonschema:"minimum=0,maximum=65535,default=2323"`
	SSHPort     int    `yaml:"ssh_port" json:"ssh_port,omitempty" jsonschema:"minimum=0,maximum=65535"`
	HostKeyPath string `yaml:"host_key_path" json:"host_key_path,omitempty"`
}

// DevServer configures the local demo HTTP server.
type DevServer struct {
	Addr string `yaml:"addr" json:"addr" jsonschema:"default=127.0.0.1:5000"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		ScreenWidth:       screen.DefaultWidth,
		ScreenHeight:      screen.DefaultHeight,
		ScrollSpeed:       screen.DefaultScrollSpeed,
		LogLevel:          "info",
		ContentDir:        "pages",
		LoadFromFiles:     true,
		LoadFromURLs:      true,
		RestrictFilepaths: true,
		FetchTimeout:      10 * time.Second,
		Keys:              screen.DefaultKeymap(),
		Listen:            Listen{Host: "0.0.0.0", Port: 2323},
		DevServer:         DevServer{Addr: "127.0.0.1:5000"},
	}
}

// Load reads settings from Path(). If the file does not exist, it returns
// Default() and no error. Fields absent from the file keep their defaults.
func Load() (Settings, error) {
	p, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFile(p)
}

// LoadFile reads settings from a specific file.
func LoadFile(p string) (Settings, error) {
	s := Default()
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", p, err)
	}
	s.normalize()
	return s, s.Validate()
}

// Save writes settings to Path(), creating the directory if needed.
func Save(s Settings) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}

func (s *Settings) normalize() {
	def := Default()
	if s.Keys == (screen.Keymap{}) {
		s.Keys = def.Keys
	}
	if s.FetchTimeout <= 0 {
		s.FetchTimeout = def.FetchTimeout
	}
	s.TrustedDirs = normalizeList(s.TrustedDirs)
	s.TrustedURLs = normalizeList(s.TrustedURLs)
}

// Validate reports settings that cannot produce a usable screen.
func (s Settings) Validate() error {
	var errs []error
	if s.ScreenWidth < 10 {
		errs = append(errs, fmt.Errorf("screen_width %d is below 10", s.ScreenWidth))
	}
	if s.ScreenHeight < 2 {
		errs = append(errs, fmt.Errorf("screen_height %d is below 2", s.ScreenHeight))
	}
	if s.ScrollSpeed <= 0 || s.ScrollSpeed > 1 {
		errs = append(errs, fmt.Errorf("scroll_speed %v must be in (0, 1]", s.ScrollSpeed))
	}
	if s.Listen.Port < 0 || s.Listen.Port > 65535 || s.Listen.SSHPort < 0 || s.Listen.SSHPort > 65535 {
		errs = append(errs, errors.New("listen ports must be within 0-65535"))
	}
	return errors.Join(errs...)
}

func normalizeList(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
