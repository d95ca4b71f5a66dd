package notify

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before calling back.
const DefaultDebounce = 100 * time.Millisecond

// ModelWatcher watches one model file and calls back when it changes.
// The containing directory is watched rather than the file itself so that
// editors which save by writing a temporary file and renaming it are seen.
type ModelWatcher struct {
	path     string
	callback func(path string)
	debounce time.Duration
	logger   zerolog.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOption configures a ModelWatcher.
type WatcherOption func(*ModelWatcher)

// WithDebounce sets the settle delay. Zero calls back on every event.
func WithDebounce(d time.Duration) WatcherOption {
	return func(mw *ModelWatcher) {
		mw.debounce = d
	}
}

// WithWatcherLogger sets the logger for watcher errors.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(mw *ModelWatcher) {
		mw.logger = l
	}
}

// NewModelWatcher creates a watcher for the model file at path.
func NewModelWatcher(path string, callback func(path string), opts ...WatcherOption) *ModelWatcher {
	mw := &ModelWatcher{
		path:     filepath.Clean(path),
		callback: callback,
		debounce: DefaultDebounce,
		logger:   zerolog.Nop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(mw)
	}
	return mw
}

// Start begins watching. Call Stop() to clean up.
func (mw *ModelWatcher) Start() error {
	dir := filepath.Dir(mw.path)
	if _, err := os.Stat(dir); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return err
	}
	mw.watcher = w

	go mw.loop()
	mw.logger.Debug().Str("path", mw.path).Msg("Watcher: watching model file")
	return nil
}

// Stop shuts down the watcher and cancels any pending callback.
func (mw *ModelWatcher) Stop() {
	if mw.watcher == nil {
		return
	}
	_ = mw.watcher.Close()
	<-mw.done

	mw.mu.Lock()
	if mw.timer != nil {
		mw.timer.Stop()
	}
	mw.mu.Unlock()
}

func (mw *ModelWatcher) loop() {
	defer close(mw.done)
	for {
		select {
		case evt, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != mw.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				mw.schedule()
			}
		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Warn().Err(err).Msg("Watcher: error")
		}
	}
}

func (mw *ModelWatcher) schedule() {
	if mw.callback == nil {
		return
	}
	if mw.debounce <= 0 {
		mw.callback(mw.path)
		return
	}

	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.timer != nil {
		mw.timer.Stop()
	}
	mw.timer = time.AfterFunc(mw.debounce, func() {
		mw.callback(mw.path)
	})
}
