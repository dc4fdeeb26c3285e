package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadDelay is how long Watch waits after the last file event before
// reloading, so editors that write in several steps trigger one reload.
const ReloadDelay = 250 * time.Millisecond

// Watch reloads the config file at path whenever it changes and calls fn
// with each new valid configuration. Invalid files are logged and ignored;
// the previous configuration stays in effect. Unchanged content does not
// call fn.
//
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, fn func(*Config)) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "config", "path", path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place, which drops a file watch.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	file := filepath.Base(path)

	last, _ := Load(path)

	var (
		timerMu  sync.Mutex
		timer    *time.Timer
		reloadMu sync.Mutex
	)
	reload := func() {
		reloadMu.Lock()
		defer reloadMu.Unlock()

		cfg, err := Load(path)
		if err != nil {
			logger.Warn("config reload failed", "error", err)
			return
		}
		if last != nil && reflect.DeepEqual(cfg, last) {
			logger.Debug("config unchanged; skipping reload")
			return
		}
		last = cfg
		logger.Info("config reloaded")
		fn(cfg)
	}
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(ReloadDelay, reload)
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	logger.Debug("config watcher started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != file {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)
		}
	}
}
