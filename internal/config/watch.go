package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the configuration file on write/create events, grounded
// on cogentcore-core's colorscheme_darwin.go fsnotify watch loop.
type Watcher struct {
	fsw  *fsnotify.Watcher
	path string
	log  *zap.Logger
	done chan struct{}
}

// Watch starts watching the directory containing path (fsnotify watches
// directories, not files, so editors that replace-on-save are still seen)
// and invokes onChange with the freshly loaded Config whenever path itself
// changes and reparses successfully.
func Watch(path string, log *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, path: path, log: log, done: make(chan struct{})}

	go func() {
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					w.log.Warn("config reload failed, keeping previous settings", zap.Error(err))
					continue
				}
				w.log.Info("config reloaded", zap.String("path", path))
				onChange(cfg)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.Warn("config watcher error", zap.Error(err))
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
