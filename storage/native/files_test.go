package native

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfworks/tana/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileArea_WriteReadDelete(t *testing.T) {
	area, err := OpenFileArea(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, area.WriteFile(ctx, "note.txt", "hello"))

	content, err := area.ReadFile(ctx, "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content.Data))
	assert.False(t, content.Raw)

	require.NoError(t, area.DeleteFile(ctx, "note.txt"))

	_, err = area.ReadFile(ctx, "note.txt")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestFileArea_ReadMissing(t *testing.T) {
	area, err := OpenFileArea(t.TempDir())
	require.NoError(t, err)

	_, err = area.ReadFile(context.Background(), "absent.b64")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestFileArea_DeleteMissing(t *testing.T) {
	area, err := OpenFileArea(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, area.DeleteFile(context.Background(), "absent.b64"))
}

func TestFileArea_EnsureDirIdempotent(t *testing.T) {
	dir := t.TempDir()
	area, err := OpenFileArea(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, area.EnsureDir(ctx, PayloadsDir))
	require.NoError(t, area.EnsureDir(ctx, PayloadsDir))

	info, err := os.Stat(filepath.Join(dir, PayloadsDir))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileArea_NestedName(t *testing.T) {
	dir := t.TempDir()
	area, err := OpenFileArea(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, area.EnsureDir(ctx, PayloadsDir))
	require.NoError(t, area.WriteFile(ctx, PayloadsDir+"/abc.b64", "AAEC"))

	// File lands under the real payloads directory.
	data, err := os.ReadFile(filepath.Join(dir, PayloadsDir, "abc.b64"))
	require.NoError(t, err)
	assert.Equal(t, "AAEC", string(data))
}

func TestOpenFileArea_CreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	_, err := OpenFileArea(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
