package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}
}

func drain(w *Watcher) {
	for {
		select {
		case <-w.Changes():
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func startWatcher(t *testing.T, path string) *Watcher {
	t.Helper()
	w, err := New(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		w.Close()
		<-done
	})
	return w
}

func TestWatcher_DetectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))
	waitChange(t, w)
}

func TestWatcher_SurvivesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slides.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w := startWatcher(t, path)

	for i := 0; i < 3; i++ {
		tmp := filepath.Join(dir, "slides.json.tmp")
		require.NoError(t, os.WriteFile(tmp, []byte(`{"n":1}`), 0644))
		require.NoError(t, os.Rename(tmp, path))
		waitChange(t, w)
		drain(w)
	}

	assert.Contains(t, w.fsw.WatchList(), dir)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slides.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	select {
	case <-w.Changes():
		t.Fatal("unexpected notification for another file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_FileCreatedLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.json")

	w := startWatcher(t, path)
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
	waitChange(t, w)
}
