// Package paths locates todosync's files under the user's home directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// GlobalConfigFile is the name of the per-user config file.
const GlobalConfigFile = "config.toml"

// DefaultConfigDir returns the per-user todosync config directory.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "todosync"), nil
}

// DefaultConfigPath returns the per-user config file path.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, GlobalConfigFile), nil
}

// WorkingDir returns the current working directory.
func WorkingDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return dir, nil
}
