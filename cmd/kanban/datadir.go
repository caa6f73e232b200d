// ABOUTME: Resolves where the kanban CLI keeps its state and its config.yaml.
// ABOUTME: Both follow the XDG base directory rules with a "kanban" subdirectory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "kanban"

// defaultDataDir is the home used when neither --home nor KANBAN_HOME is set.
func defaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

func defaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// xdgDir returns $envKey/kanban, or ~/<fallback...>/kanban when the variable
// is unset or not absolute. Relative XDG values are invalid and ignored.
func xdgDir(envKey string, fallback ...string) (string, error) {
	if base := os.Getenv(envKey); filepath.IsAbs(base) {
		return filepath.Join(base, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%s unset and no home directory: %w", envKey, err)
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appDirName)...), nil
}
