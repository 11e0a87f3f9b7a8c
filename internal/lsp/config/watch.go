package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ResolvedFileWatcher watches the individual files a FileResolver has
// resolved at least once, so an include graph discovered through
// \input/\include stays current even though only the client's own open
// documents generate didChange notifications. Grounded on
// internal/watch/watcher.go's FileWatcher, adapted to watch a dynamic
// set of individual files rather than a fixed list of project
// directories.
type ResolvedFileWatcher struct {
	resolver *FileResolver
	watcher  *fsnotify.Watcher
	logger   *zap.Logger

	mu      sync.Mutex
	watched map[string]struct{}

	done chan struct{}
}

// NewResolvedFileWatcher creates a watcher bound to resolver. Call Start
// to begin watching and Add as the resolver discovers new paths.
func NewResolvedFileWatcher(resolver *FileResolver, logger *zap.Logger) (*ResolvedFileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ResolvedFileWatcher{
		resolver: resolver,
		watcher:  w,
		logger:   logger,
		watched:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Add registers path for watching if it is not already watched. Safe to
// call repeatedly with the same path.
func (w *ResolvedFileWatcher) Add(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	w.mu.Lock()
	_, already := w.watched[abs]
	if !already {
		w.watched[abs] = struct{}{}
	}
	w.mu.Unlock()

	if already {
		return
	}
	if err := w.watcher.Add(abs); err != nil {
		w.logger.Warn("failed to watch resolved file", zap.String("path", abs), zap.Error(err))
	}
}

// Start runs the watch loop in a goroutine, forwarding Write events to
// the bound resolver's NotifyChanged. It returns immediately.
func (w *ResolvedFileWatcher) Start() {
	go w.run()
}

func (w *ResolvedFileWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				w.resolver.NotifyChanged(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("resolved file watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watch loop and releases the underlying fsnotify
// watcher.
func (w *ResolvedFileWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
