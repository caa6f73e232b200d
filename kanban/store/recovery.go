// ABOUTME: Startup recovery combining the state file, the activity journal, and the SQLite index.
// ABOUTME: Repairs a torn journal, prefers it when it is ahead of the saved log, and rebuilds a stale index.
package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/2389-research/kanban-lite/kanban/core"
	log "github.com/sirupsen/logrus"
)

// RecoverOptions selects which auxiliary stores take part in recovery.
type RecoverOptions struct {
	Journal bool
	Index   bool
	// Users seeds the state when no state file exists yet.
	Users []*core.User
}

// Recover reconstructs state for the manager's home.
//
// Recovery sequence:
//  1. Load the state file, or start from opts.Users when it does not exist
//  2. Repair the journal (drop torn lines) and replay it
//  3. If the journal holds more entries than the saved log, adopt it
//  4. Compare the index card count with the state and rebuild on mismatch
func (m *StorageManager) Recover(opts RecoverOptions) (*State, *core.DecodeReport, error) {
	state, report, err := LoadStateFile(m.StatePath())
	if errors.Is(err, os.ErrNotExist) {
		log.WithFields(log.Fields{
			"component": "kanban.store",
			"action":    "recover",
			"path":      m.StatePath(),
		}).Debug("no state file, starting empty")
		state, report, err = NewState(), &core.DecodeReport{}, nil
		state.Users = append(state.Users, opts.Users...)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load state: %w", err)
	}

	if opts.Journal {
		if err := m.recoverJournal(state); err != nil {
			return nil, nil, err
		}
	}

	if opts.Index {
		if err := m.checkIndex(state); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"component": "kanban.store",
				"action":    "recover_index",
			}).Warn("index check failed")
		}
	}

	return state, report, nil
}

func (m *StorageManager) recoverJournal(state *State) error {
	path := m.JournalPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	kept, err := RepairJournal(path)
	if err != nil {
		return fmt.Errorf("repair journal: %w", err)
	}
	entries, err := ReplayJournal(path)
	if err != nil {
		return fmt.Errorf("replay journal: %w", err)
	}

	fields := log.Fields{
		"component": "kanban.store",
		"action":    "recover_journal",
		"journal":   kept,
		"saved":     state.ActivityLog.Len(),
	}
	if len(entries) > state.ActivityLog.Len() {
		state.ActivityLog = core.RestoreActivityLog(entries)
		log.WithFields(fields).Info("activity log restored from journal")
		return nil
	}
	log.WithFields(fields).Debug("journal replayed")
	return nil
}

func (m *StorageManager) checkIndex(state *State) error {
	idx, err := OpenSqlite(m.IndexPath())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	indexed, err := idx.CountCards()
	if err != nil {
		return err
	}
	total := 0
	for _, b := range state.Boards {
		total += b.CardCount()
	}
	if indexed == total {
		return nil
	}

	log.WithFields(log.Fields{
		"component": "kanban.store",
		"action":    "recover_index",
		"indexed":   indexed,
		"expected":  total,
	}).Info("index out of date, rebuilding")
	return idx.IndexBoards(state.Boards)
}
