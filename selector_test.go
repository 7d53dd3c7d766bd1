package tana

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/storage"
)

func TestTierSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("native when the directory is usable", func(t *testing.T) {
		cat, err := Open(ctx, t.TempDir())
		require.NoError(t, err)
		defer cat.Close()

		assert.Equal(t, storage.KindNative, cat.ActiveTier())
	})

	t.Run("transactional when the probe denies native", func(t *testing.T) {
		dir := t.TempDir()
		cat, err := Open(ctx, dir, WithProbe(func() bool { return false }))
		require.NoError(t, err)
		defer cat.Close()

		assert.Equal(t, storage.KindTransactional, cat.ActiveTier())
		_, err = os.Stat(filepath.Join(dir, "catalog.db"))
		assert.NoError(t, err)
	})

	t.Run("flat when nothing else opens", func(t *testing.T) {
		// A file where the directory should be defeats both the
		// transactional and the file-backed flat store.
		notADir := filepath.Join(t.TempDir(), "blocked")
		require.NoError(t, os.WriteFile(notADir, []byte("x"), 0644))

		cat, err := Open(ctx, notADir, WithProbe(func() bool { return false }))
		require.NoError(t, err)
		defer cat.Close()

		assert.Equal(t, storage.KindFlat, cat.ActiveTier())

		// The catalog still works for the session.
		rec, outcome, err := cat.AddRecord(ctx, testDraft("in memory only"), []byte("payload"))
		require.NoError(t, err)
		assert.Equal(t, core.PayloadDegraded, outcome)
		require.Len(t, cat.Records(), 1)
		assert.Equal(t, rec.Id, cat.Records()[0].Id)
	})

	t.Run("selection happens once", func(t *testing.T) {
		dir := t.TempDir()
		probes := 0
		cat, err := Open(ctx, dir, WithProbe(func() bool { probes++; return true }))
		require.NoError(t, err)
		defer cat.Close()

		for i := 0; i < 3; i++ {
			_, _, err := cat.AddRecord(ctx, testDraft("again"), nil)
			require.NoError(t, err)
		}
		assert.Equal(t, 1, probes)
	})
}

func TestDefaultProbe(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		assert.True(t, defaultProbe(t.TempDir())())
	})

	t.Run("missing directory under existing parent", func(t *testing.T) {
		assert.True(t, defaultProbe(filepath.Join(t.TempDir(), "fresh"))())
	})

	t.Run("missing parent", func(t *testing.T) {
		assert.False(t, defaultProbe(filepath.Join(t.TempDir(), "a", "b"))())
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupied")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		assert.False(t, defaultProbe(path)())
	})
}
