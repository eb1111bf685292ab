package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long a change must be quiet before the file is reloaded, so
// that an editor's several writes count as one.
const settle = 100 * time.Millisecond

// Watch reloads the engine whenever the definition file at path changes,
// until ctx is done. onReload, if set, receives the outcome of every reload
// attempt. Watch returns once the watch is in place.
func (e *Engine) Watch(ctx context.Context, path string, onReload func(error)) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	// The directory is watched: editors often replace the file rather than
	// write it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("error adding %s to watcher: %w", path, err)
	}

	go e.watchLoop(ctx, watcher, path, onReload)
	return nil
}

func (e *Engine) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, onReload func(error)) {
	defer watcher.Close()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
			} else {
				resetTimer(timer, settle)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			err := e.reloadFile(path)
			if onReload != nil {
				onReload(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.String("path", path), zap.Error(err))
		}
	}
}

func (e *Engine) reloadFile(path string) error {
	cfg, err := Load(path)
	if err != nil {
		e.logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		return err
	}
	if err := e.Reload(cfg); err != nil {
		e.logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		return err
	}
	return nil
}

// resetTimer rearms t, discarding a fire that was never received.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
