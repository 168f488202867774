package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/avrouter/internal/observability"
)

// ReloadFunc receives every accepted configuration after a change on
// disk. It is never called with a config that failed validation.
type ReloadFunc func(*Config)

// Watcher reloads the configuration file when it changes. A version
// that fails to load or validate is dropped: the current config stays
// in place and the failure goes to the error handler.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	onReload ReloadFunc
	onError  func(error)
	logger   observability.Logger
	debounce time.Duration

	mu      sync.RWMutex
	current *Config
	running bool

	stop chan struct{}
	done chan struct{}
}

// WatcherOption is a functional option for the watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last file
// event before reloading. Editors and configmap mounts produce bursts
// of events for a single logical change.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithErrorHandler sets the handler invoked for watch failures and
// rejected reloads.
func WithErrorHandler(handler func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = handler
	}
}

// NewWatcher creates a watcher for the configuration file at path. The
// reload callback may be nil when only Current is of interest.
func NewWatcher(path string, onReload ReloadFunc, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		fs:       fs,
		onReload: onReload,
		logger:   observability.NopLogger(),
		debounce: 100 * time.Millisecond,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start loads and validates the file once, then watches its directory
// until Stop or context cancellation. A file that does not load on
// startup fails Start; later bad versions only report.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	cfg, err := w.load()
	if err != nil {
		w.setRunning(false)
		return err
	}
	w.setCurrent(cfg)

	// Watch the directory, not the file: atomic saves and mount
	// updates replace the file, which drops a direct watch.
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		w.setRunning(false)
		return err
	}

	w.logger.Info("watching configuration",
		observability.String("path", w.path),
	)

	go w.run(ctx)

	return nil
}

// Stop ends the watch and releases the file system watcher. Safe to
// call more than once and after a failed Start.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stop)
		<-w.done
	}

	return w.fs.Close()
}

// Current returns the most recently accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// ForceReload reloads the file immediately, outside the debounce
// cycle. Unlike a watch-triggered reload, a failure is returned to the
// caller instead of going to the error handler.
func (w *Watcher) ForceReload() error {
	cfg, err := w.load()
	if err != nil {
		return err
	}

	w.setCurrent(cfg)
	if w.onReload != nil {
		w.onReload(cfg)
	}

	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return

		case <-w.stop:
			w.logger.Info("config watcher stopped")
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			w.logger.Debug("config file changed",
				observability.String("op", ev.Op.String()),
			)

			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			armed = true

		case <-timer.C:
			armed = false
			w.apply()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watch error", observability.Error(err))
			w.report(err)
		}
	}
}

// apply loads the changed file and publishes it when valid.
func (w *Watcher) apply() {
	cfg, err := w.load()
	if err != nil {
		w.logger.Error("config reload rejected, keeping current configuration",
			observability.String("path", w.path),
			observability.Error(err),
		)
		w.report(err)
		return
	}

	w.setCurrent(cfg)
	w.logger.Info("configuration reloaded",
		observability.Int("routes", len(cfg.Routes)),
	)

	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// load reads and validates in one step so no caller can publish an
// unvalidated config.
func (w *Watcher) load() (*Config, error) {
	cfg, err := LoadConfig(w.path)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (w *Watcher) setCurrent(cfg *Config) {
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
}

func (w *Watcher) setRunning(v bool) {
	w.mu.Lock()
	w.running = v
	w.mu.Unlock()
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
