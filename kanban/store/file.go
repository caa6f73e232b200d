// ABOUTME: Locked, crash-safe save and load of the JSON state file.
// ABOUTME: A sibling .lock file created with O_EXCL keeps a second process out during I/O.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/2389-research/kanban-lite/kanban/core"
	log "github.com/sirupsen/logrus"
)

// ErrLocked is returned when another holder owns the state file lock.
var ErrLocked = errors.New("state file is locked")

// FileLock is an exclusive advisory lock represented by a lock file on disk.
type FileLock struct {
	path string
}

// LockPath returns the lock file path guarding path.
func LockPath(path string) string {
	return path + ".lock"
}

// AcquireLock creates the lock file for path. If it already exists and names
// a live process, the call fails with an error wrapping ErrLocked. A lock
// left by a process that no longer exists is removed and taken over.
func AcquireLock(path string) (*FileLock, error) {
	lockPath := LockPath(path)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	f, err := createLockFile(lockPath)
	if errors.Is(err, os.ErrExist) && staleLock(lockPath) {
		log.WithFields(log.Fields{
			"component": "kanban.store",
			"action":    "acquire_lock",
			"path":      lockPath,
		}).Warn("removing stale lock")
		if rmErr := os.Remove(lockPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lock: %w", rmErr)
		}
		f, err = createLockFile(lockPath)
	}
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	if err != nil {
		return nil, fmt.Errorf("create lock file: %w", err)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	_ = f.Close()
	return &FileLock{path: lockPath}, nil
}

func createLockFile(lockPath string) (*os.File, error) {
	return os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
}

// staleLock reports whether the lock file records the pid of a process that
// has exited. Unreadable or empty lock files are not considered stale.
func staleLock(lockPath string) bool {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	err = proc.Signal(syscall.Signal(0))
	return errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH)
}

// Release removes the lock file.
func (l *FileLock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// SaveStateFile writes s to path atomically while holding the lock.
// Parent directories are created as needed.
func SaveStateFile(path string, s *State) error {
	lock, err := AcquireLock(path)
	if err != nil {
		return err
	}
	defer releaseLock(lock)

	data, err := EncodeState(s, time.Now())
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	log.WithFields(log.Fields{
		"component": "kanban.store",
		"action":    "save_state",
		"path":      path,
		"boards":    len(s.Boards),
		"users":     len(s.Users),
	}).Debug("state saved")
	return nil
}

// LoadStateFile reads and decodes the state file at path while holding the
// lock. Skipped entities are logged as warnings and returned in the report.
func LoadStateFile(path string) (*State, *core.DecodeReport, error) {
	lock, err := AcquireLock(path)
	if err != nil {
		return nil, nil, err
	}
	defer releaseLock(lock)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read state file: %w", err)
	}
	state, report, err := DecodeState(data)
	if err != nil {
		return nil, nil, err
	}
	logSkips(path, report)

	log.WithFields(log.Fields{
		"component": "kanban.store",
		"action":    "load_state",
		"path":      path,
		"boards":    len(state.Boards),
		"users":     len(state.Users),
		"skipped":   report.Len(),
	}).Debug("state loaded")
	return state, report, nil
}

func releaseLock(lock *FileLock) {
	if err := lock.Release(); err != nil {
		log.WithError(err).WithField("component", "kanban.store").Warn("release lock failed")
	}
}

func logSkips(path string, report *core.DecodeReport) {
	for _, skip := range report.Skipped {
		log.WithFields(log.Fields{
			"component": "kanban.store",
			"action":    "decode_skip",
			"path":      path,
			"entity":    skip.Path,
		}).WithError(skip.Err).Warn("skipped invalid entry")
	}
}

// writeFileAtomic writes data to a temp file beside path, fsyncs it, renames
// it over path, and fsyncs the parent directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent dirs: %w", err)
	}

	tmpPath := path + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("fsync temp file: %w", err)
	}
	_ = tmpFile.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
