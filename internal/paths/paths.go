package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDirEnv overrides the default state directory when set.
const StateDirEnv = "BEE_STATE_DIR"

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// WorkingDir returns the current working directory.
func WorkingDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return cwd, nil
}

// DefaultStateDir returns the directory holding task data.
func DefaultStateDir() (string, error) {
	if dir := os.Getenv(StateDirEnv); dir != "" {
		return dir, nil
	}
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "beesmart"), nil
}

// DefaultConfigDir returns the directory holding the global config file.
func DefaultConfigDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "beesmart"), nil
}

// ResolveWithDefault returns override when it is non-empty and the result of
// fallback otherwise.
func ResolveWithDefault(override string, fallback func() (string, error)) (string, error) {
	if override != "" {
		return override, nil
	}
	return fallback()
}
