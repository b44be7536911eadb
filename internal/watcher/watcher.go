// Package watcher follows a single file and reports when its content
// changes.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
)

// Default timings.
const (
	DefaultDebounce    = 100 * time.Millisecond
	DefaultRemoveGrace = 300 * time.Millisecond
)

// Change reports new content for the followed file.
type Change struct {
	Path    string
	Hash    string
	Removed bool
}

// Follower watches one file. It watches the parent directory so that
// rename-over-original saves are seen, and only reports a change when the
// content hash differs from the last one reported.
type Follower struct {
	path   string
	logger *slog.Logger

	debounce    time.Duration
	removeGrace time.Duration

	fsWatcher *fsnotify.Watcher
	coalescer *Coalescer
	changes   chan Change
	errChan   chan error

	mu       sync.Mutex
	lastHash string
	running  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// FollowerOption configures a Follower.
type FollowerOption func(*Follower)

// WithDebounce sets the debounce window for write bursts.
func WithDebounce(d time.Duration) FollowerOption {
	return func(f *Follower) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithRemoveGrace sets how long a remove waits for a replacing create.
func WithRemoveGrace(d time.Duration) FollowerOption {
	return func(f *Follower) {
		if d > 0 {
			f.removeGrace = d
		}
	}
}

// WithLogger sets the logger for the follower.
func WithLogger(logger *slog.Logger) FollowerOption {
	return func(f *Follower) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInitialHash seeds the hash of the content already displayed.
func WithInitialHash(hash string) FollowerOption {
	return func(f *Follower) {
		f.lastHash = hash
	}
}

// NewFollower creates a Follower for path.
func NewFollower(path string, opts ...FollowerOption) (*Follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path; %w", err)
	}

	f := &Follower{
		path:        abs,
		logger:      slog.Default(),
		debounce:    DefaultDebounce,
		removeGrace: DefaultRemoveGrace,
		changes:     make(chan Change, 8),
		errChan:     make(chan error, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "watcher", "path", abs)
	return f, nil
}

// Path returns the absolute path being followed.
func (f *Follower) Path() string {
	return f.path
}

// Start begins watching. It returns once the watch is registered.
func (f *Follower) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return errors.New("follower already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher; %w", err)
	}
	if err := fsw.Add(filepath.Dir(f.path)); err != nil {
		_ = fsw.Close()
		if isWatchLimitError(err) {
			return fmt.Errorf("failed to watch %s; watch limit reached; %w", f.path, err)
		}
		return fmt.Errorf("failed to watch %s; %w", f.path, err)
	}

	f.fsWatcher = fsw
	f.coalescer = NewCoalescer(f.debounce, f.removeGrace)
	f.running = true

	go f.processEvents(ctx)
	go f.processCoalesced(ctx)

	f.logger.Debug("following file")
	return nil
}

// Changes returns the channel of content changes.
func (f *Follower) Changes() <-chan Change {
	return f.changes
}

// Errors reports watcher errors. Sends never block.
func (f *Follower) Errors() <-chan error {
	return f.errChan
}

// Stop stops the follower and waits for the event loop to exit.
func (f *Follower) Stop() error {
	var err error
	f.stopOnce.Do(func() {
		f.mu.Lock()
		running := f.running
		f.running = false
		f.mu.Unlock()

		close(f.stopCh)
		if !running {
			return
		}
		f.coalescer.Stop()
		err = f.fsWatcher.Close()
		<-f.doneCh
	})
	return err
}

func (f *Follower) processEvents(ctx context.Context) {
	defer close(f.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopCh:
			return
		case event, ok := <-f.fsWatcher.Events:
			if !ok {
				return
			}
			f.handleFsEvent(event)
		case err, ok := <-f.fsWatcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("fsnotify error", "error", err)
			select {
			case f.errChan <- err:
			default:
			}
		}
	}
}

func (f *Follower) handleFsEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != f.path || isEditorNoise(event.Name) {
		return
	}

	var op Op
	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		op = OpRemove
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpWrite
	default:
		return // chmod only
	}

	f.coalescer.Add(Event{Path: f.path, Op: op, Time: time.Now()})
}

func (f *Follower) processCoalesced(ctx context.Context) {
	events := f.coalescer.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stopCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if change, ok := f.check(ev); ok {
				select {
				case f.changes <- change:
				case <-f.stopCh:
					return
				}
			}
		}
	}
}

// check turns a coalesced event into a Change when the content differs.
func (f *Follower) check(ev Event) (Change, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ev.Op == OpRemove {
		if _, err := os.Stat(f.path); err == nil {
			return Change{}, false
		}
		f.lastHash = ""
		return Change{Path: f.path, Removed: true}, true
	}

	content, err := os.ReadFile(f.path)
	if err != nil {
		f.logger.Debug("failed to read changed file", "error", err)
		return Change{}, false
	}
	hash := filetype.HashBytes(content)
	if hash == f.lastHash {
		f.logger.Debug("content unchanged; skipping", "op", ev.Op.String())
		return Change{}, false
	}
	f.lastHash = hash
	return Change{Path: f.path, Hash: hash}, true
}

// isEditorNoise reports transient editor artifacts.
func isEditorNoise(path string) bool {
	name := filepath.Base(path)

	if strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".swo") || strings.HasSuffix(name, ".swn") {
		return true
	}
	if name == "4913" {
		return true
	}
	if strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") {
		return true
	}
	return strings.HasSuffix(name, "~")
}

// isWatchLimitError checks if an error indicates watch limit exhaustion.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "too many open files") ||
		strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "user limit on total number of inotify watches")
}
