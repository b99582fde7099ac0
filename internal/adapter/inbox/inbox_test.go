package inbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const notification = `{"source":"us","code":"7000m9g4","type":"origin","status":"UPDATE"}`

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	w, err := NewWatcher(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// drop writes a notification under a temporary name and renames it in.
func drop(t *testing.T, dir, name string) {
	t.Helper()
	tmp := filepath.Join(dir, name+".tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(notification), 0o600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, name)))
}

func TestWatcher_QueuesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	drop(t, dir, "b.json")
	drop(t, dir, "a.json")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o600))

	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	batch, err := w.ExtractBatch(ctx, 10)
	require.NoError(t, err)

	require.Len(t, batch, 2)
	assert.Equal(t, "a.json", string(batch[0].Key))
	assert.Equal(t, "b.json", string(batch[1].Key))
	assert.JSONEq(t, notification, string(batch[0].Value))
}

func TestWatcher_PicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	drop(t, dir, "new.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batch, err := w.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "new.json", string(batch[0].Key))
}

func TestWatcher_BatchSizeLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.json", "2.json", "3.json"} {
		drop(t, dir, name)
	}
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	first, err := w.ExtractBatch(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := w.ExtractBatch(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestWatcher_CommitMovesFile(t *testing.T) {
	dir := t.TempDir()
	drop(t, dir, "evt.json")
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	batch, err := w.ExtractBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, batch[0].Commit(ctx))
	assert.NoFileExists(t, filepath.Join(dir, "evt.json"))
	assert.FileExists(t, filepath.Join(dir, ProcessedDir, "evt.json"))

	// Committing twice is harmless.
	require.NoError(t, batch[0].Commit(ctx))
}

func TestWatcher_InFlightFileNotRequeued(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	drop(t, dir, "evt.json")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	batch, err := w.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	// A write while the file awaits commit does not queue it again.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evt.json"), []byte(notification), 0o600))
	waitCtx, waitCancel := context.WithTimeout(ctx, 300*time.Millisecond)
	_, err = w.ExtractBatch(waitCtx, 10)
	waitCancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// Once committed, a new file under the same name is picked up.
	require.NoError(t, batch[0].Commit(ctx))
	drop(t, dir, "evt.json")
	again, err := w.ExtractBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "evt.json", string(again[0].Key))
}

func TestWatcher_ContextCancelled(t *testing.T) {
	w := newTestWatcher(t, t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := w.ExtractBatch(ctx, 10)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewWatcher_MissingParent(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0o600))

	_, err := NewWatcher(filepath.Join(parent, "inbox"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
