package staging

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
)

func TestSweepRemovesOnlyStaleStagedFiles(t *testing.T) {
	s, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)

	stale, err := s.Stage(fileHeader(t, "old.txt", []byte("old")))
	require.NoError(t, err)
	fresh, err := s.Stage(fileHeader(t, "new.txt", []byte("new")))
	require.NoError(t, err)
	foreign := filepath.Join(s.Dir(), "keep.me")
	require.NoError(t, os.WriteFile(foreign, []byte("x"), 0o600))

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale.StoredPath, past, past))
	require.NoError(t, os.Chtimes(foreign, past, past))

	removed, err := s.Sweep(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, stale.StoredPath)
	assert.FileExists(t, fresh.StoredPath)
	assert.FileExists(t, foreign)
}

func TestSweeperRunsUntilCanceled(t *testing.T) {
	s, err := New(t.TempDir(), 1<<20)
	require.NoError(t, err)
	f, err := s.Stage(fileHeader(t, "a.txt", []byte("a")))
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(f.StoredPath, past, past))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartSweeper(ctx, 10*time.Millisecond, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(f.StoredPath)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}
