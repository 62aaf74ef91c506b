// Package watch refreshes a workspace when web files under its root change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/services/workspace"
	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/utils"
)

// DefaultDebounce is the quiet period after the last relevant event before a refresh runs.
const DefaultDebounce = 200 * time.Millisecond

const (
	logMessageWatchingDirectory = "watching directory"
	logMessageChangeDetected    = "change detected"
	logMessageWatchError        = "watch error"
	logMessageRefreshFailed     = "refresh after change failed"
)

// Refresher is the part of a workspace the watcher drives.
type Refresher interface {
	Refresh(ctx context.Context) (*workspace.Snapshot, error)
}

// Options configures a Watcher.
type Options struct {
	Root           string
	Extensions     []string
	IgnorePatterns []string
	Debounce       time.Duration
}

// Watcher turns filesystem notifications under a root into workspace refreshes.
// Bursts of events are coalesced into one refresh, and refreshes run one at a
// time on the goroutine calling Run.
type Watcher struct {
	notifier    *fsnotify.Watcher
	refresher   Refresher
	logger      *zap.Logger
	options     Options
	watchedDirs map[string]struct{}
}

// New creates a Watcher registered on options.Root and every directory below it.
func New(options Options, refresher Refresher, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if len(options.Extensions) == 0 {
		options.Extensions = sitetree.DefaultExtensions()
	}
	options.Root = filepath.Clean(options.Root)

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &Watcher{
		notifier:    notifier,
		refresher:   refresher,
		logger:      logger,
		options:     options,
		watchedDirs: map[string]struct{}{},
	}
	if err := watcher.addRecursive(options.Root); err != nil {
		_ = notifier.Close()
		return nil, err
	}
	return watcher, nil
}

// Run processes notifications until ctx is done, then releases the watch.
func (watcher *Watcher) Run(ctx context.Context) error {
	defer func() {
		_ = watcher.notifier.Close()
	}()

	// nil until a relevant event arrives; every further event restarts the quiet period
	var debounceElapsed <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.notifier.Events:
			if !ok {
				return nil
			}
			if watcher.handleEvent(event) {
				debounceElapsed = time.After(watcher.options.Debounce)
			}
		case watchError, ok := <-watcher.notifier.Errors:
			if !ok {
				return nil
			}
			watcher.logger.Warn(logMessageWatchError, zap.Error(watchError))
		case <-debounceElapsed:
			debounceElapsed = nil
			if _, err := watcher.refresher.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
				watcher.logger.Warn(logMessageRefreshFailed, zap.Error(err))
			}
		}
	}
}

// handleEvent keeps the watch list current and reports whether the event
// changes the tree: a web file or a directory appeared, changed or went away.
func (watcher *Watcher) handleEvent(event fsnotify.Event) bool {
	eventPath := filepath.Clean(event.Name)
	if watcher.ignored(eventPath) {
		return false
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(eventPath); err == nil && info.IsDir() {
			if err := watcher.addRecursive(eventPath); err != nil {
				watcher.logger.Warn(logMessageWatchError, zap.String("path", eventPath), zap.Error(err))
			}
			watcher.logger.Debug(logMessageChangeDetected, zap.String("path", eventPath), zap.String("op", event.Op.String()))
			return true
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if _, wasDirectory := watcher.watchedDirs[eventPath]; wasDirectory {
			watcher.forgetDirectory(eventPath)
			watcher.logger.Debug(logMessageChangeDetected, zap.String("path", eventPath), zap.String("op", event.Op.String()))
			return true
		}
	}

	if !watcher.matchesExtension(eventPath) {
		return false
	}
	watcher.logger.Debug(logMessageChangeDetected, zap.String("path", eventPath), zap.String("op", event.Op.String()))
	return true
}

func (watcher *Watcher) matchesExtension(path string) bool {
	fileName := filepath.Base(path)
	for _, extension := range watcher.options.Extensions {
		if extension != "" && strings.HasSuffix(fileName, extension) {
			return true
		}
	}
	return false
}

func (watcher *Watcher) ignored(path string) bool {
	if len(watcher.options.IgnorePatterns) == 0 || path == watcher.options.Root {
		return false
	}
	return utils.ShouldIgnoreByPath(utils.RelativePathOrSelf(path, watcher.options.Root), watcher.options.IgnorePatterns)
}

// addRecursive registers directory and its subdirectories. Directories that
// vanish or deny access while being walked are skipped.
func (watcher *Watcher) addRecursive(directory string) error {
	return filepath.WalkDir(directory, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if os.IsNotExist(walkError) || os.IsPermission(walkError) {
				return nil
			}
			return walkError
		}
		if !entry.IsDir() {
			return nil
		}
		if watcher.ignored(path) {
			return filepath.SkipDir
		}
		if _, alreadyWatched := watcher.watchedDirs[path]; alreadyWatched {
			return nil
		}
		if err := watcher.notifier.Add(path); err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		watcher.watchedDirs[path] = struct{}{}
		watcher.logger.Debug(logMessageWatchingDirectory, zap.String("path", path))
		return nil
	})
}

func (watcher *Watcher) forgetDirectory(directory string) {
	prefix := directory + string(filepath.Separator)
	for watchedPath := range watcher.watchedDirs {
		if watchedPath == directory || strings.HasPrefix(watchedPath, prefix) {
			delete(watcher.watchedDirs, watchedPath)
			_ = watcher.notifier.Remove(watchedPath)
		}
	}
}

// WatchedDirectories returns the number of directories currently registered.
func (watcher *Watcher) WatchedDirectories() int {
	return len(watcher.watchedDirs)
}
