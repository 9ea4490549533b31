// Package watcher emits a debounced signal whenever the Claude directory
// changes, so long-lived consumers can rebuild the index while it is open.
package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pcarlton/histx/internal/logging"
	"github.com/pcarlton/histx/internal/scanner"
)

var watchLog = logging.ForComponent(logging.CompWatcher)

// debounceWindow coalesces the burst of writes Claude Code makes at the end
// of each turn into a single rebuild.
const debounceWindow = 500 * time.Millisecond

// Watcher watches history.jsonl and every project directory under one
// Claude directory. Changes are coalesced and delivered as empty tokens on
// Events; the receiver is expected to rescan, not to interpret the event.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan struct{}

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New starts watching claudeDir. The directory itself must exist; project
// subdirectories are picked up as they appear.
func New(claudeDir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}

	w := &Watcher{
		fs:     fs,
		events: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}

	if err := fs.Add(claudeDir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", claudeDir, err)
	}

	// Watch the projects tree if it exists; new project dirs inside it are
	// added from the event loop.
	projectsDir := filepath.Join(claudeDir, scanner.ProjectsDirName)
	if entries, err := os.ReadDir(projectsDir); err == nil {
		if err := fs.Add(projectsDir); err != nil {
			watchLog.Warn("watch_failed", slog.String("path", projectsDir), slog.String("error", err.Error()))
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			dir := filepath.Join(projectsDir, e.Name())
			if err := fs.Add(dir); err != nil {
				watchLog.Warn("watch_failed", slog.String("path", dir), slog.String("error", err.Error()))
			}
		}
	}

	w.wg.Add(1)
	go w.loop(claudeDir, projectsDir)
	return w, nil
}

// Events delivers one token per debounced batch of filesystem changes.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and closes the Events channel.
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	return w.fs.Close()
}

func (w *Watcher) loop(claudeDir, projectsDir string) {
	defer w.wg.Done()
	defer close(w.events)

	debounce := time.NewTimer(debounceWindow)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-w.stop:
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev, claudeDir, projectsDir) {
				continue
			}
			watchLog.Debug("fs_event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name))
			if pending && !debounce.Stop() {
				<-debounce.C
			}
			debounce.Reset(debounceWindow)
			pending = true

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			watchLog.Warn("watch_error", slog.String("error", err.Error()))

		case <-debounce.C:
			pending = false
			select {
			case w.events <- struct{}{}:
			default:
				// Receiver is still handling the previous token; the
				// rebuild it triggers will see this change too.
			}
		}
	}
}

// relevant filters the event stream down to changes that can affect the
// index, and registers watches on newly created project directories.
func (w *Watcher) relevant(ev fsnotify.Event, claudeDir, projectsDir string) bool {
	if ev.Name == filepath.Join(claudeDir, scanner.HistoryFileName) {
		return true
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
			if filepath.Dir(ev.Name) == projectsDir || ev.Name == projectsDir {
				if err := w.fs.Add(ev.Name); err != nil {
					watchLog.Warn("watch_failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				}
				return true
			}
			return false
		}
	}

	if strings.HasSuffix(ev.Name, ".jsonl") && strings.HasPrefix(ev.Name, projectsDir+string(filepath.Separator)) {
		return true
	}
	if ev.Op.Has(fsnotify.Remove) && (filepath.Dir(ev.Name) == projectsDir || ev.Name == projectsDir) {
		return true
	}
	return false
}
