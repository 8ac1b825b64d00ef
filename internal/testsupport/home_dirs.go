package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EnsureHomeDirs creates the default state and config directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	if err := os.MkdirAll(filepath.Join(homeDir, ".local", "state", "beesmart"), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(homeDir, ".config", "beesmart"), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return nil
}

// SetupTestHome creates a temp home directory, ensures state/config dirs, and
// sets HOME. BEE_STATE_DIR is cleared so the default under HOME is used.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("BEE_STATE_DIR", "")
	return homeDir
}
