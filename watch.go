package blogindex

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watchDebounce collapses bursts of file events into one cache refresh.
const watchDebounce = 300 * time.Millisecond

// Watch invalidates the post cache whenever a markdown post or a source
// image changes on disk. It blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	if a.Cache == nil {
		return fmt.Errorf("blogindex: watch before Open")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("blogindex: create watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range []string{a.Config.ContentDir, a.Config.ImagesDir} {
		if err := watchTree(watcher, root); err != nil {
			a.Logger.Warn("not watching directory", zap.String("dir", root), zap.Error(err))
		}
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						a.Logger.Warn("not watching new directory", zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}
			a.Logger.Debug("content changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				a.Cache.Invalidate()
				a.Logger.Info("post cache invalidated after content change")
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchTree adds root and every directory below it to watcher.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}
