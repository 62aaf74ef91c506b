// Package filelock writes files atomically while holding an advisory lock,
// so concurrent writers of one path never interleave.
package filelock

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

const (
	lockFileSuffix       = ".lock"
	lockFilePrefix       = "sitemapper-"
	temporaryFilePattern = ".tmp-*"
	writtenFileMode      = 0o644
	lockDirectoryMode    = 0o755
)

// FileLock wraps a flock file lock for coordinating access to one target file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock backed by the file at lockPath.
func NewFileLock(lockPath string) *FileLock {
	return &FileLock{flock: flock.New(lockPath), path: lockPath}
}

// Lock acquires the exclusive lock, blocking until it is available.
func (fileLock *FileLock) Lock() error {
	if err := fileLock.flock.Lock(); err != nil {
		return fmt.Errorf("acquire lock on %s: %w", fileLock.path, err)
	}
	return nil
}

// Unlock releases the lock.
func (fileLock *FileLock) Unlock() error {
	if err := fileLock.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock on %s: %w", fileLock.path, err)
	}
	return nil
}

// LockPathFor returns the lock file used for targetPath inside lockDirectory.
// Lock files are kept out of the target's directory so that directory only
// ever holds the written files themselves.
func LockPathFor(lockDirectory string, targetPath string) string {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(filepath.Clean(targetPath)))
	return filepath.Join(lockDirectory, lockFilePrefix+strconv.FormatUint(hasher.Sum64(), 16)+lockFileSuffix)
}

// AtomicWrite writes data to a temporary file next to path and renames it over path.
// Readers observe either the previous content or the complete new content.
func AtomicWrite(path string, data []byte) error {
	directory := filepath.Dir(path)
	temporaryFile, err := os.CreateTemp(directory, temporaryFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", directory, err)
	}
	temporaryPath := temporaryFile.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = temporaryFile.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	if _, err := temporaryFile.Write(data); err != nil {
		return fmt.Errorf("write temp file %s: %w", temporaryPath, err)
	}
	if err := temporaryFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file %s: %w", temporaryPath, err)
	}
	if err := temporaryFile.Close(); err != nil {
		return fmt.Errorf("close temp file %s: %w", temporaryPath, err)
	}
	if err := os.Chmod(temporaryPath, writtenFileMode); err != nil {
		return fmt.Errorf("set permissions on %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	renamed = true
	return nil
}

// LockAndWrite acquires the lock for path in lockDirectory, performs an atomic
// write and releases the lock. An empty lockDirectory uses os.TempDir.
func LockAndWrite(lockDirectory string, path string, data []byte) error {
	if lockDirectory == "" {
		lockDirectory = os.TempDir()
	}
	if err := os.MkdirAll(lockDirectory, lockDirectoryMode); err != nil {
		return fmt.Errorf("create lock directory %s: %w", lockDirectory, err)
	}
	fileLock := NewFileLock(LockPathFor(lockDirectory, path))
	if err := fileLock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = fileLock.Unlock()
	}()
	return AtomicWrite(path, data)
}
