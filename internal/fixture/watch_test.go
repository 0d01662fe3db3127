package fixture

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "fixtures.yml")
	require.NoError(t, os.WriteFile(file, []byte("home: {}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, file, 10*time.Millisecond, func(context.Context) Result {
			reloads.Add(1)
			return Result{Loaded: true}
		}, nil)
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(file, []byte("about: {}\n"), 0o644)
		return reloads.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "fixtures.yml"), 0, func(context.Context) Result {
		return Result{}
	}, nil)
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "fixtures.yml")

	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Write}, target))
	assert.True(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Create}, target))
	assert.False(t, relevant(fsnotify.Event{Name: target, Op: fsnotify.Chmod}, target))
	assert.False(t, relevant(fsnotify.Event{Name: filepath.Join(dir, "other.yml"), Op: fsnotify.Write}, target))
}
