package builtin

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDotenv_ClearsCacheOnChange(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "TOKEN=old")
	cache := NewDotenvCache(dir)

	v, _, err := cache.Lookup("TOKEN")
	require.NoError(t, err)
	require.Equal(t, "old", v)

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchDotenv(ctx, cache, nil, func(path string) {
			select {
			case changed <- path:
			default:
			}
		})
	}()

	// The watcher registers asynchronously, keep writing until an event lands.
	require.Eventually(t, func() bool {
		writeDotenv(t, dir, "TOKEN=new")
		select {
		case path := <-changed:
			return filepath.Base(path) == DotenvFilename
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	v, _, err = cache.Lookup("TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
