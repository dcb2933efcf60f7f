// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WithEnv sets key to val until the test ends; an empty val unsets it.
// Tests using it must not run in parallel.
func WithEnv(t *testing.T, key, val string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
	if val == "" {
		_ = os.Unsetenv(key)
		return
	}
	_ = os.Setenv(key, val)
}

// ConfigHome points the user config and home directories at a fresh
// temporary directory and returns it.
func ConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WithEnv(t, "XDG_CONFIG_HOME", dir)
	WithEnv(t, "HOME", dir)
	WithEnv(t, "IVIWEB_CONFIG_DIR", "")
	return dir
}

// WriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
