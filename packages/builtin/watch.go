package builtin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchDotenv clears cache whenever a .env file in one of its search
// directories changes. It blocks until ctx is done. onChange, if non-nil, is
// called after each invalidation with the path of the changed file.
func WatchDotenv(ctx context.Context, cache *DotenvCache, warn WarnFunc, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create dotenv watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range cache.SearchDirs() {
		if err := watcher.Add(dir); err != nil && warn != nil {
			warn("failed to watch %s: %v", dir, err)
		}
	}

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != DotenvFilename || event.Op&relevant == 0 {
				continue
			}
			cache.Clear()
			if onChange != nil {
				onChange(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if warn != nil {
				warn("dotenv watcher: %v", err)
			}
		}
	}
}
