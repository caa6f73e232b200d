// ABOUTME: Append-only JSONL journal of activity entries, mirrored from the live ActivityLog.
// ABOUTME: Provides fsynced append, sequential replay, and atomic repair of torn lines.
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2389-research/kanban-lite/kanban/core"
	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"
)

// jsonl encodes journal lines with encoding/json-compatible output.
var jsonl = sonic.ConfigStd

// Journal is an append-only JSONL file with one ActivityEntry per line.
type Journal struct {
	path string
	file *os.File
}

// OpenJournal opens (or creates) the journal at path in append mode.
// Creates parent directories if they do not exist.
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create parent dirs: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{path: path, file: file}, nil
}

// Path returns the path to the underlying file.
func (j *Journal) Path() string {
	return j.path
}

// Append writes entry as one JSON line and fsyncs.
func (j *Journal) Append(entry core.ActivityEntry) error {
	data, err := jsonl.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write entry line: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("fsync: %w", err)
	}
	return nil
}

// Observe appends entry and logs any failure. Its signature fits
// ActivityLog.Subscribe.
func (j *Journal) Observe(entry core.ActivityEntry) {
	if err := j.Append(entry); err != nil {
		log.WithFields(log.Fields{
			"component": "kanban.store",
			"action":    "journal_append",
			"path":      j.path,
		}).WithError(err).Warn("journal append failed")
	}
}

// Rewrite replaces the journal contents with entries and reopens it for
// appending. Used when the live log is swapped for a loaded one. On failure
// the journal keeps appending through its previous handle.
func (j *Journal) Rewrite(entries []core.ActivityEntry) error {
	var buf strings.Builder
	for _, e := range entries {
		data, err := jsonl.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	if err := writeFileAtomic(j.path, []byte(buf.String())); err != nil {
		return fmt.Errorf("rewrite journal: %w", err)
	}
	file, err := os.OpenFile(j.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen journal: %w", err)
	}
	old := j.file
	j.file = file
	if err := old.Close(); err != nil {
		log.WithFields(log.Fields{
			"component": "kanban.store",
			"action":    "journal_rewrite",
			"path":      j.path,
		}).WithError(err).Warn("close replaced journal handle failed")
	}
	return nil
}

// Close closes the underlying file.
func (j *Journal) Close() error {
	return j.file.Close()
}

// ReplayJournal reads every entry in order. Empty lines are skipped; a line
// that does not decode is an error.
func ReplayJournal(path string) ([]core.ActivityEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal for replay: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []core.ActivityEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := core.DecodeActivityEntry([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("parse journal line %d: %w", n, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return entries, nil
}

// RepairJournal rewrites the journal keeping only complete, decodable lines.
// The rewrite is atomic. Returns the number of entries retained.
func RepairJournal(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open journal for repair: %w", err)
	}

	var valid strings.Builder
	count := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := core.DecodeActivityEntry([]byte(line)); err == nil {
			valid.WriteString(line)
			valid.WriteByte('\n')
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		_ = file.Close()
		return 0, fmt.Errorf("scan journal for repair: %w", err)
	}
	_ = file.Close()

	if err := writeFileAtomic(path, []byte(valid.String())); err != nil {
		return 0, fmt.Errorf("rewrite journal: %w", err)
	}
	return count, nil
}
