package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RebuildsAfterChange(t *testing.T) {
	dir := t.TempDir()

	var rebuilds atomic.Int64
	w, err := New(50*time.Millisecond, func() error {
		rebuilds.Add(1)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html></html>"), 0644))

	require.Eventually(t, func() bool {
		return rebuilds.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}

func TestWatcher_NoChangesNoRebuild(t *testing.T) {
	var rebuilds atomic.Int64
	w, err := New(20*time.Millisecond, func() error {
		rebuilds.Add(1)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(t.TempDir()))

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_ = w.Run(ctx)

	assert.Zero(t, rebuilds.Load())
}

func TestWatcher_AddSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "views"), 0755))

	w, err := New(time.Second, func() error { return nil }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Add(dir))
}
