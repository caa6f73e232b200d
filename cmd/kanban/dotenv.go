// ABOUTME: Loads environment variables from .env files at startup using godotenv.
// ABOUTME: Sets variables only when not already present in the environment (no clobber).
package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// loadDotEnv loads path without overriding existing variables.
// Missing files are silently ignored.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithFields(log.Fields{
			"component": "kanban.cli",
			"action":    "load_dotenv",
			"path":      path,
		}).WithError(err).Warn("could not parse .env file")
	}
}

// loadDotEnvAuto loads .env files from common locations. Earlier files win
// because godotenv never overrides a variable that is already set.
// Search order:
//  1. .env in current directory and its parents
//  2. .env next to the current executable
func loadDotEnvAuto() {
	for _, p := range dotEnvCandidates() {
		loadDotEnv(p)
	}
}

func dotEnvCandidates() []string {
	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for {
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if exe, err := os.Executable(); err == nil {
		add(filepath.Join(filepath.Dir(exe), ".env"))
	}
	return paths
}
