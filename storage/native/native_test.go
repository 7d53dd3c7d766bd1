package native

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTier(t *testing.T) (*Tier, string) {
	t.Helper()
	dir := t.TempDir()
	tier, err := NewMemoryTier(dir)
	require.NoError(t, err)
	t.Cleanup(func() { tier.Close() })
	return tier, dir
}

func testRecord(id string, added core.Date) *core.Record {
	return &core.Record{
		Id:        id,
		AddedDate: added,
		Title:     "title " + id,
		FileType:  "PDF",
	}
}

func TestTier_Kind(t *testing.T) {
	tier, _ := newTestTier(t)
	assert.Equal(t, storage.KindNative, tier.Kind())
}

func TestTier_LoadAllEmpty(t *testing.T) {
	tier, _ := newTestTier(t)

	records, err := tier.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTier_SaveAndLoad(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	newer := testRecord("a", core.Date{Year: 2026, Month: time.April, Day: 2})
	older := testRecord("b", core.Date{Year: 2026, Month: time.April, Day: 1})
	snapshot := []*core.Record{newer, older}

	require.NoError(t, tier.SaveRecord(ctx, newer, snapshot))

	records, err := tier.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Id)
	assert.Equal(t, "b", records[1].Id)
}

func TestTier_SaveOverwritesSnapshot(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	first := testRecord("a", core.Date{Year: 2026, Month: time.April, Day: 1})
	require.NoError(t, tier.SaveRecord(ctx, first, []*core.Record{first}))

	// A later save writes the whole collection; the old snapshot is gone.
	second := testRecord("b", core.Date{Year: 2026, Month: time.April, Day: 2})
	require.NoError(t, tier.SaveRecord(ctx, second, []*core.Record{second}))

	records, err := tier.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].Id)
}

func TestTier_DeleteRecord(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	rec := testRecord("a", core.Date{Year: 2026, Month: time.April, Day: 1})
	require.NoError(t, tier.SaveRecord(ctx, rec, []*core.Record{rec}))
	require.NoError(t, tier.DeleteRecord(ctx, "a", []*core.Record{}))

	records, err := tier.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestTier_PayloadRoundTrip(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF}
	p := &core.Payload{RecordId: "a", MimeType: "application/pdf", Bytes: content}
	require.NoError(t, tier.SavePayload(ctx, p))

	got, err := tier.Payload(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, content, got.Bytes)
	assert.Equal(t, "a", got.RecordId)
}

func TestTier_PayloadFileIsText(t *testing.T) {
	tier, dir := newTestTier(t)
	ctx := context.Background()

	content := []byte{1, 2, 3, 4}
	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: content}))

	// The stored file is the base64 text, not raw bytes.
	data, err := os.ReadFile(filepath.Join(dir, PayloadsDir, "a.b64"))
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(content), string(data))
}

func TestTier_PayloadMissing(t *testing.T) {
	tier, _ := newTestTier(t)

	_, err := tier.Payload(context.Background(), "absent")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTier_DeletePayloadIdempotent(t *testing.T) {
	tier, _ := newTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{1}}))
	require.NoError(t, tier.DeletePayload(ctx, "a"))
	require.NoError(t, tier.DeletePayload(ctx, "a"))

	_, err := tier.Payload(ctx, "a")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestTier_WithoutKeyValue(t *testing.T) {
	files, err := OpenFileArea(t.TempDir())
	require.NoError(t, err)

	tier := New(nil, files, nil)
	defer tier.Close()
	ctx := context.Background()

	_, err = tier.LoadAll(ctx)
	assert.True(t, errors.Is(err, storage.ErrUnavailable))

	rec := testRecord("a", core.Date{Year: 2026, Month: time.April, Day: 1})
	err = tier.SaveRecord(ctx, rec, []*core.Record{rec})
	assert.True(t, errors.Is(err, storage.ErrUnavailable))

	err = tier.DeleteRecord(ctx, "a", nil)
	assert.True(t, errors.Is(err, storage.ErrUnavailable))
}

func TestTier_WithoutFileArea(t *testing.T) {
	kv, err := OpenMemoryKeyValue(nil)
	require.NoError(t, err)

	tier := New(kv, nil, nil)
	defer tier.Close()
	ctx := context.Background()

	err = tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{1}})
	assert.True(t, errors.Is(err, storage.ErrPayloadUnavailable))

	_, err = tier.Payload(ctx, "a")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	// Delete degrades to a logged no-op.
	assert.NoError(t, tier.DeletePayload(ctx, "a"))

	// Record operations still work.
	rec := testRecord("a", core.Date{Year: 2026, Month: time.April, Day: 1})
	require.NoError(t, tier.SaveRecord(ctx, rec, []*core.Record{rec}))

	records, err := tier.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// rawFileArea returns stored content flagged as raw bytes, simulating a
// backing store that hands back binary instead of the written text.
type rawFileArea struct {
	files map[string][]byte
}

var _ storage.FileArea = (*rawFileArea)(nil)

func (f *rawFileArea) EnsureDir(ctx context.Context, name string) error { return nil }

func (f *rawFileArea) WriteFile(ctx context.Context, name, text string) error {
	f.files[name] = []byte(text)
	return nil
}

func (f *rawFileArea) ReadFile(ctx context.Context, name string) (storage.FileContent, error) {
	data, ok := f.files[name]
	if !ok {
		return storage.FileContent{}, storage.ErrNotFound
	}
	return storage.FileContent{Data: data, Raw: true}, nil
}

func (f *rawFileArea) DeleteFile(ctx context.Context, name string) error {
	delete(f.files, name)
	return nil
}

func TestTier_PayloadRawContent(t *testing.T) {
	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	area := &rawFileArea{files: map[string][]byte{
		PayloadsDir + "/a.b64": raw,
	}}

	tier := New(nil, area, nil)
	defer tier.Close()

	got, err := tier.Payload(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, raw, got.Bytes)
}
