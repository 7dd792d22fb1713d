// Package watcher reports changes to an outline source file so the open
// session can be refreshed. Events come from fsnotify; network mounts, or
// hosts where inotify fails, fall back to polling the file's size and mtime.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/readtree/pkg/debug"
)

// DefaultPollInterval is used in polling mode unless WithPollInterval says
// otherwise.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

type settings struct {
	debounce  time.Duration
	poll      time.Duration
	forcePoll bool
	onChange  func()
	onError   func(error)
}

// Option configures a Watcher.
type Option func(*settings)

// WithDebounceDuration sets how long the file must be quiet before a change
// is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(s *settings) { s.debounce = d }
}

// WithPollInterval sets the stat interval in polling mode. Non-positive
// values are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithOnChange registers a callback run on every reported change, before the
// Changed channel is signalled.
func WithOnChange(fn func()) Option {
	return func(s *settings) { s.onChange = fn }
}

// WithOnError registers a callback for removal, permission and fsnotify
// errors.
func WithOnError(fn func(error)) Option {
	return func(s *settings) { s.onError = fn }
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(s *settings) { s.forcePoll = force }
}

// stamp is what polling compares between ticks.
type stamp struct {
	mtime time.Time
	size  int64
}

func (s stamp) exists() bool { return !s.mtime.IsZero() }

func stampOf(info os.FileInfo) stamp {
	return stamp{mtime: info.ModTime(), size: info.Size()}
}

// Watcher follows a single file.
type Watcher struct {
	path    string
	cfg     settings
	changed chan struct{}
	settle  *Debouncer

	mu      sync.RWMutex
	running bool
	polling bool
	fsType  FilesystemType
	last    stamp
	notify  *fsnotify.Watcher
	stop    context.CancelFunc
}

// New prepares a watcher for path. Nothing happens until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cfg := settings{
		debounce: DefaultDebounceDuration,
		poll:     DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Watcher{
		path:    abs,
		cfg:     cfg,
		changed: make(chan struct{}, 1),
		settle:  NewDebouncer(cfg.debounce),
	}, nil
}

// Start begins watching. A file that does not exist yet is reported once it
// appears.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.path)
	switch {
	case err == nil:
		w.last = stampOf(info)
	case os.IsPermission(err):
		return ErrPermission
	default:
		w.last = stamp{}
	}

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.cfg.forcePoll || envBool("READTREE_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	ctx, cancel := context.WithCancel(context.Background())
	w.stop = cancel
	if !w.polling {
		n, err := w.subscribe()
		if err == nil {
			w.notify = n
			go w.runEvents(ctx, n)
		} else {
			debug.Log("watcher: fsnotify unavailable for %s, polling: %v", w.path, err)
			w.polling = true
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	debug.Log("watcher: %s on %s filesystem (polling=%v)", w.path, w.fsType, w.polling)
	w.running = true
	return nil
}

// subscribe watches the parent directory, since editors that save by
// renaming a temp file over the original replace the watched inode.
func (w *Watcher) subscribe() (*fsnotify.Watcher, error) {
	n, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := n.Add(filepath.Dir(w.path)); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

// Stop stops watching and drops a pending change. Changed is not closed.
// Stopping twice is harmless, and a stopped watcher may be started again.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.stop()
	if w.notify != nil {
		w.notify.Close()
		w.notify = nil
	}
	w.settle.Cancel()
	w.running = false
}

func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Changed receives once per debounced change. At most one signal is
// buffered; changes while it is unread are merged into it.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Path is the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// FilesystemType is the classification made by the last Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

func (w *Watcher) PollInterval() time.Duration { return w.cfg.poll }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) runEvents(ctx context.Context, n *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-n.Errors:
			if !ok {
				return
			}
			w.cfg.onError(err)
		case ev, ok := <-n.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.cfg.onError(ErrFileRemoved)
			} else if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.settle.Trigger(w.fire)
			}
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	tick := time.NewTicker(w.cfg.poll)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if w.restat() {
				w.settle.Trigger(w.fire)
			}
		}
	}
}

// restat reports whether the file's stamp moved since the previous call.
// Errors go to the error callback; a missing file only counts as removed if
// it was seen before.
func (w *Watcher) restat() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		w.mu.RLock()
		seen := w.last.exists()
		w.mu.RUnlock()
		switch {
		case os.IsNotExist(err):
			if seen {
				w.cfg.onError(ErrFileRemoved)
			}
		case os.IsPermission(err):
			w.cfg.onError(ErrPermission)
		default:
			w.cfg.onError(err)
		}
		return false
	}

	now := stampOf(info)
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.size == w.last.size && !now.mtime.After(w.last.mtime) {
		return false
	}
	w.last = now
	return true
}

func (w *Watcher) fire() {
	if !w.IsStarted() {
		return
	}
	w.cfg.onChange()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
