package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv. The TELNET_SERVER_* names
// are accepted for existing deployments; the IVIWEB_* names win when both
// are set.
const (
	EnvHost        = "IVIWEB_HOST"
	EnvPort        = "IVIWEB_PORT"
	EnvSSHPort     = "IVIWEB_SSH_PORT"
	EnvLogLevel    = "IVIWEB_LOG_LEVEL"
	EnvStartPage   = "IVIWEB_START_PAGE"
	EnvLegacyHost  = "TELNET_SERVER_HOST"
	EnvLegacyPort  = "TELNET_SERVER_PORT"
	defaultEnvFile = ".env"
)

// LoadEnv loads variables from the given .env files (".env" when none is
// given) into the process environment. Missing files are ignored; variables
// already set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{defaultEnvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func ApplyEnv(s *Settings) error {
	if v := firstEnv(EnvHost, EnvLegacyHost); v != "" {
		s.Listen.Host = v
	}
	if v := firstEnv(EnvPort, EnvLegacyPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", v, err)
		}
		s.Listen.Port = n
	}
	if v := firstEnv(EnvSSHPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ssh port %q: %w", v, err)
		}
		s.Listen.SSHPort = n
	}
	if v := firstEnv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := firstEnv(EnvStartPage); v != "" {
		s.StartPage = v
	}
	return s.Validate()
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
