// ABOUTME: CLI configuration resolved from defaults, config.yaml, environment variables, and flags.
// ABOUTME: Precedence is flags > env > config file > defaults; KANBAN_* variables mirror the yaml keys.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Card id schemes.
const (
	idSchemeSequence = "sequence"
	idSchemeULID     = "ulid"
)

// config holds everything the CLI needs to open a workspace.
type config struct {
	Home      string `yaml:"home"`
	StateFile string `yaml:"state_file"`
	IDScheme  string `yaml:"id_scheme"`
	Autosave  bool   `yaml:"autosave"`
	Index     bool   `yaml:"index"`
	Journal   bool   `yaml:"journal"`
	LogLevel  string `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		IDScheme: idSchemeSequence,
		Autosave: true,
		Index:    true,
		Journal:  true,
		LogLevel: "warn",
	}
}

// loadConfigFile overlays the yaml file at path onto cfg. Keys absent from
// the file keep their current value. A missing file is not an error.
func loadConfigFile(path string, cfg *config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	log.WithFields(log.Fields{
		"component": "kanban.cli",
		"action":    "load_config",
		"path":      path,
	}).Debug("config file loaded")
	return nil
}

// applyEnv overlays KANBAN_* environment variables onto cfg.
func applyEnv(cfg *config) error {
	cfg.Home = envOrDefault("KANBAN_HOME", cfg.Home)
	cfg.StateFile = envOrDefault("KANBAN_STATE_FILE", cfg.StateFile)
	cfg.IDScheme = envOrDefault("KANBAN_ID_SCHEME", cfg.IDScheme)
	cfg.LogLevel = envOrDefault("KANBAN_LOG_LEVEL", cfg.LogLevel)

	for key, dst := range map[string]*bool{
		"KANBAN_AUTOSAVE": &cfg.Autosave,
		"KANBAN_INDEX":    &cfg.Index,
		"KANBAN_JOURNAL":  &cfg.Journal,
	} {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}
	return nil
}

// envOrDefault returns the value of the environment variable named by key,
// or fallback if the variable is unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// resolveConfig builds the config from defaults, the config file in
// configDir, and the environment. Flags are applied by the caller.
func resolveConfig(configDir string) (config, error) {
	cfg := defaultConfig()
	if configDir != "" {
		if err := loadConfigFile(filepath.Join(configDir, "config.yaml"), &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validate fills in the default home and rejects unknown settings.
func (c *config) validate() error {
	if c.Home == "" {
		dir, err := defaultDataDir()
		if err != nil {
			return err
		}
		c.Home = dir
	}
	c.IDScheme = strings.ToLower(strings.TrimSpace(c.IDScheme))
	if c.IDScheme != idSchemeSequence && c.IDScheme != idSchemeULID {
		return fmt.Errorf("unknown id scheme %q (want %s or %s)", c.IDScheme, idSchemeSequence, idSchemeULID)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// idGenerator returns a fresh generator for the configured scheme. A
// sequence generator is reset from the saved counter on restore.
func (c config) idGenerator() core.IDGenerator {
	if c.IDScheme == idSchemeULID {
		return core.ULIDGenerator{}
	}
	return core.NewSequenceGenerator(0)
}

// logLevel returns the configured logrus level, defaulting to warn.
func (c config) logLevel() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}
