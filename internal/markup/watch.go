package markup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cyberpodolia/deskwin/internal/layout"
	"github.com/cyberpodolia/deskwin/internal/logging"
)

// settleDelay groups the bursts of events editors produce on save.
const settleDelay = 150 * time.Millisecond

// Watch re-reads the page at path whenever it changes and passes the new
// windows to onChange. It blocks until ctx is cancelled. Parse failures are
// logged and skipped.
func Watch(ctx context.Context, path string, logger *logging.ScopedLogger, onChange func([]layout.WindowSpec)) error {
	if logger == nil {
		logger = logging.NopLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	target := filepath.Clean(path)
	timer := time.NewTimer(settleDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(settleDelay)
			}

		case <-timer.C:
			specs, err := ParseFile(path)
			if err != nil {
				logger.Warn("failed to reload page", "path", path, "error", err)
				continue
			}
			logger.Info("page changed", "path", path, "windows", len(specs))
			onChange(specs)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("page watcher error", "error", err)
		}
	}
}
