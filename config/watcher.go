package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/mindmesh/logging"
)

// Watcher hot-reloads a config file: on every write it re-parses and
// re-validates the file and hands the fresh config to the callback. An
// invalid file is logged and skipped, so the previously delivered config
// stays in effect.
type Watcher struct {
	path     string
	onReload func(cfg *Config)
	logger   logging.Logger

	watcher     *fsnotify.Watcher
	debounceDur time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// WatcherOptions holds configuration overrides passed to NewWatcher().
type WatcherOptions struct {
	// Debounce suppresses reloads within this window after a reload, since
	// editors tend to fire several write events per save.
	Debounce time.Duration
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string, onReload func(cfg *Config), optFns ...func(o *WatcherOptions)) (*Watcher, error) {
	opts := WatcherOptions{
		Debounce: 250 * time.Millisecond,
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:        path,
		onReload:    onReload,
		logger:      opts.Logger,
		watcher:     fsw,
		debounceDur: opts.Debounce,
	}, nil
}

// Start begins watching the file's directory (watching the directory rather
// than the file survives editors that replace the file on save). Non-blocking.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.loop(w.stopCh, w.doneCh)
	return nil
}

// Stop halts the watcher and releases its resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
	w.running = false
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	var lastReload time.Time
	target := filepath.Clean(w.path)

	for {
		select {
		case <-stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if time.Since(lastReload) < w.debounceDur {
				continue
			}
			lastReload = time.Now()

			cfg, err := Load(w.path)
			if err != nil {
				w.logger.Warn("config reload skipped", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("config reloaded", "path", w.path)
			w.onReload(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
