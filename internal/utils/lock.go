package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WriterLock serializes commands that write to one gameshelf database.
// The lock lives in a sibling file named after the database.
type WriterLock struct {
	fl   *flock.Flock
	db   string
	file string
}

// NewWriterLock prepares, without taking, the writer lock for dbPath.
func NewWriterLock(dbPath string) (*WriterLock, error) {
	abs, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dbPath, err)
	}
	file := abs + ".writer"
	return &WriterLock{fl: flock.New(file), db: filepath.Base(abs), file: file}, nil
}

// Path is the lock file location.
func (l *WriterLock) Path() string { return l.file }

// Acquire blocks until no other gameshelf writer holds the database.
func (l *WriterLock) Acquire() error {
	free, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.file, err)
	}
	if free {
		return nil
	}
	Log.Warnf("%s is busy with another import or match, queued behind it", l.db)
	if err := l.fl.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", l.file, err)
	}
	return nil
}

// Release drops the lock. A lock file removed underneath us counts as released.
func (l *WriterLock) Release() error {
	err := l.fl.Unlock()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("unlocking %s: %w", l.file, err)
}

// GetAbsDBPath resolves the database path. An empty path selects
// ~/.config/gameshelf/gameshelf.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "gameshelf", "gameshelf.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}

// EnsureDBDir creates the directory holding the database file.
func EnsureDBDir(absPath string) error {
	return os.MkdirAll(filepath.Dir(absPath), 0o755)
}
