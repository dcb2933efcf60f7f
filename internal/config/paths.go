package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigDir overrides the directory returned by Dir.
const EnvConfigDir = "IVIWEB_CONFIG_DIR"

const appDir = "iviweb"

// Dir returns the directory holding config.yaml: $IVIWEB_CONFIG_DIR when
// set, else <UserConfigDir>/iviweb (XDG_CONFIG_HOME on Linux, Application
// Support on macOS, %AppData% on Windows), else ~/.iviweb.
func Dir() (string, error) {
	if d := strings.TrimSpace(os.Getenv(EnvConfigDir)); d != "" {
		return filepath.Clean(d), nil
	}
	if base, err := os.UserConfigDir(); err == nil && strings.TrimSpace(base) != "" {
		return filepath.Join(base, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("cannot determine config directory")
	}
	return filepath.Join(home, "."+appDir), nil
}

// Path returns the settings file location inside Dir.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
