package access

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the rule file whenever it changes on disk until ctx is done.
// The directory is watched rather than the file so that editors replacing
// the file by rename are noticed too.
func (c *Control) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(c.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	c.logger.Info(ctx, "watching policy file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := c.Reload(); err != nil {
				c.logger.Warn(ctx, "policy reload failed", "path", target, "error", err)
				continue
			}
			c.logger.Info(ctx, "policy reloaded", "path", target)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn(ctx, "policy watcher error", "error", err)
		}
	}
}
