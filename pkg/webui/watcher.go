package webui

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/vuekb/vuekb/pkg/logger"
)

// watchDebounce collapses editor save bursts into a single reload.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the server's corpus whenever a markdown file in one of the
// given directories changes. Directories that do not exist yet are skipped.
// Blocks until the context is cancelled.
func (s *Server) Watch(ctx context.Context, dirs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Warn("failed to watch directory")
			continue
		}
		watched++
	}

	if watched == 0 {
		logger.G(ctx).Warn("no skill directories exist to watch")
		<-ctx.Done()
		return nil
	}

	logger.G(ctx).WithField("dirs", watched).Info("watching skill directories for changes")

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			logger.G(ctx).WithFields(map[string]any{
				"file":      event.Name,
				"operation": event.Op.String(),
			}).Debug("skill file changed")

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := s.Refresh(ctx); err != nil {
				logger.G(ctx).WithError(err).Error("failed to reload corpus")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}
