// ABOUTME: High-level storage manager for the kanban home directory layout.
// ABOUTME: Resolves state, journal, index, and export paths and writes board exports.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/2389-research/kanban-lite/kanban/export"
	log "github.com/sirupsen/logrus"
)

// StorageManager manages the kanban home directory.
//
// Dir layout:
//
//	home/state.json
//	home/activity.jsonl
//	home/index.db
//	home/exports/{board-id}.{md,yaml,html}
//
// The state file may be relocated with SetStatePath; the others stay in home.
type StorageManager struct {
	home      string
	statePath string
}

// NewStorageManager creates a StorageManager rooted at home, creating the
// home and exports directories if they do not exist.
func NewStorageManager(home string) (*StorageManager, error) {
	if err := os.MkdirAll(filepath.Join(home, "exports"), 0o755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}
	return &StorageManager{home: home, statePath: filepath.Join(home, "state.json")}, nil
}

// Home returns the home directory path.
func (m *StorageManager) Home() string {
	return m.home
}

// StatePath returns the state file path.
func (m *StorageManager) StatePath() string {
	return m.statePath
}

// SetStatePath points the manager at a state file outside home. An empty
// path restores the default.
func (m *StorageManager) SetStatePath(path string) {
	if path == "" {
		path = filepath.Join(m.home, "state.json")
	}
	m.statePath = path
}

// JournalPath returns the activity journal path.
func (m *StorageManager) JournalPath() string {
	return filepath.Join(m.home, "activity.jsonl")
}

// IndexPath returns the SQLite index path.
func (m *StorageManager) IndexPath() string {
	return filepath.Join(m.home, "index.db")
}

// ExportsDir returns the directory that receives board exports.
func (m *StorageManager) ExportsDir() string {
	return filepath.Join(m.home, "exports")
}

// WriteExports renders board in every export format into the exports
// directory and returns the written paths.
func (m *StorageManager) WriteExports(board *core.Board) ([]string, error) {
	dir := m.ExportsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}

	paths := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		out, err := export.Render(board, f)
		if err != nil {
			return paths, fmt.Errorf("render %s export: %w", f, err)
		}
		path := filepath.Join(dir, board.ID()+f.Extension())
		if err := writeFileAtomic(path, []byte(out)); err != nil {
			return paths, fmt.Errorf("write %s export: %w", f, err)
		}
		paths = append(paths, path)
	}

	log.WithFields(log.Fields{
		"component": "kanban.store",
		"action":    "write_exports",
		"board_id":  board.ID(),
		"files":     len(paths),
	}).Debug("exports written")
	return paths, nil
}

// Reindex rebuilds the SQLite index from boards.
func (m *StorageManager) Reindex(boards []*core.Board) error {
	idx, err := m.OpenIndex()
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()
	return idx.IndexBoards(boards)
}

// OpenIndex opens the SQLite index in home, applying migrations.
func (m *StorageManager) OpenIndex() (*SqliteIndex, error) {
	return OpenSqlite(m.IndexPath())
}
