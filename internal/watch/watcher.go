// Package watch reloads template definitions when their directory
// changes on disk, so a running engine picks up edits without a restart.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scaffold-engine/internal/template"
)

// #region types

// ReloadHandler receives the freshly loaded registry after a debounced
// change batch. Swapping it into the engine is the caller's job.
type ReloadHandler func(reg *template.Registry)

// Options configures the watcher.
type Options struct {
	// DebounceWindow is how long to wait for further changes before
	// reloading. Editors often emit several events per save.
	DebounceWindow time.Duration
	Logger         *zap.Logger
}

// DefaultOptions uses a 250ms debounce window.
func DefaultOptions() Options {
	return Options{DebounceWindow: 250 * time.Millisecond}
}

// #endregion types

// #region watcher

// Watcher observes a template directory and reloads it on change. One
// reload per debounce window regardless of how many files changed: the
// whole directory is reloaded so registration order stays stable.
type Watcher struct {
	dir      string
	handler  ReloadHandler
	debounce time.Duration
	logger   *zap.Logger

	fsw      *fsnotify.Watcher
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds a watcher for dir. Start must be called to begin watching.
func New(dir string, handler ReloadHandler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watch: handler is required")
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultOptions().DebounceWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: opts.DebounceWindow,
		logger:   logger,
		fsw:      fsw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start launches the watch loop.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop shuts the watcher down and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.fsw.Close()
	})
	<-w.doneCh
}

// #endregion watcher

// #region loop

func isTemplateFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isTemplateFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("template file changed",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("template watch error", zap.Error(err))
		}
	}
}

// reload loads the full directory and hands the new registry to the
// handler. A load error keeps the previous registry in place.
func (w *Watcher) reload() {
	reg, err := template.RegistryFromDir(w.dir)
	if err != nil {
		w.logger.Warn("template reload failed, keeping previous registry",
			zap.String("dir", w.dir), zap.Error(err))
		return
	}
	w.logger.Info("templates reloaded",
		zap.String("dir", w.dir), zap.Int("count", reg.Len()))
	w.handler(reg)
}

// #endregion loop
