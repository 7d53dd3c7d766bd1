package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	tier, _ := openTestTier(t)
	ctx := context.Background()

	content := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF}
	p := &core.Payload{RecordId: "a", MimeType: "application/pdf", Bytes: content}
	require.NoError(t, tier.SavePayload(ctx, p))

	got, err := tier.Payload(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, content, got.Bytes)
	assert.Equal(t, "application/pdf", got.MimeType)
	assert.Equal(t, "a", got.RecordId)
}

func TestPayload_EmptyBytes(t *testing.T) {
	tier, _ := openTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{}}))

	got, err := tier.Payload(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Bytes)
}

func TestPayload_StoredAsNumericSequence(t *testing.T) {
	tier, _ := openTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{
		RecordId: "a",
		Bytes:    []byte{0x25, 0x50, 0x44, 0x46},
	}))

	// The column holds the numeric text, never binary.
	var content string
	err := tier.db.QueryRow(`SELECT content FROM payloads WHERE id = ?`, "a").Scan(&content)
	require.NoError(t, err)
	assert.Equal(t, "[37,80,68,70]", content)
}

func TestPayload_Missing(t *testing.T) {
	tier, _ := openTestTier(t)

	_, err := tier.Payload(context.Background(), "absent")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSavePayload_Replaces(t *testing.T) {
	tier, _ := openTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{1, 2}}))
	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{3, 4, 5}}))

	got, err := tier.Payload(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5}, got.Bytes)
}

func TestDeletePayload_Idempotent(t *testing.T) {
	tier, _ := openTestTier(t)
	ctx := context.Background()

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{1}}))
	require.NoError(t, tier.DeletePayload(ctx, "a"))
	require.NoError(t, tier.DeletePayload(ctx, "a"))

	_, err := tier.Payload(ctx, "a")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPayload_NormalizesBase64Text(t *testing.T) {
	tier, _ := openTestTier(t)

	// A row written by an older client: base64 text, no digest.
	_, err := tier.db.Exec(
		`INSERT INTO payloads (id, mime_type, digest, content) VALUES (?, ?, ?, ?)`,
		"legacy", "application/pdf", "", "JVBERg==")
	require.NoError(t, err)

	got, err := tier.Payload(context.Background(), "legacy")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x50, 0x44, 0x46}, got.Bytes)
}

func TestPayload_NormalizesDataURI(t *testing.T) {
	tier, _ := openTestTier(t)

	_, err := tier.db.Exec(
		`INSERT INTO payloads (id, mime_type, digest, content) VALUES (?, ?, ?, ?)`,
		"uri", "", "", "data:application/pdf;base64,JVBERg==")
	require.NoError(t, err)

	got, err := tier.Payload(context.Background(), "uri")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x50, 0x44, 0x46}, got.Bytes)
}

func TestPayload_NormalizesRawBlob(t *testing.T) {
	tier, _ := openTestTier(t)

	raw := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	_, err := tier.db.Exec(
		`INSERT INTO payloads (id, mime_type, digest, content) VALUES (?, ?, ?, ?)`,
		"blob", "", "", raw)
	require.NoError(t, err)

	got, err := tier.Payload(context.Background(), "blob")
	require.NoError(t, err)
	assert.Equal(t, raw, got.Bytes)
}

func TestPayload_DigestMismatch(t *testing.T) {
	tier, _ := openTestTier(t)

	_, err := tier.db.Exec(
		`INSERT INTO payloads (id, mime_type, digest, content) VALUES (?, ?, ?, ?)`,
		"corrupt", "", "0000000000000000", "[1,2,3]")
	require.NoError(t, err)

	_, err = tier.Payload(context.Background(), "corrupt")
	assert.True(t, errors.Is(err, storage.ErrPayloadIntegrity))
}

func TestEncodeDecodeNumeric(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		text  string
	}{
		{"empty", []byte{}, "[]"},
		{"single", []byte{0}, "[0]"},
		{"full range", []byte{0, 127, 255}, "[0,127,255]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, encodeNumeric(tt.bytes))

			decoded, err := decodeNumeric(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.bytes, decoded)
		})
	}
}

func TestDecodeNumeric_OutOfRange(t *testing.T) {
	_, err := decodeNumeric("[0,256]")
	assert.Error(t, err)

	_, err = decodeNumeric("[-1]")
	assert.Error(t, err)
}

func TestPayloadRef(t *testing.T) {
	tier, dir := openTestTier(t)
	ctx := context.Background()

	content := []byte{0x25, 0x50, 0x44, 0x46}
	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: content}))

	uri, err := tier.PayloadRef(ctx, "a")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"), "uri = %q", uri)

	// The reference points at a real scratch file holding the raw bytes.
	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, filepath.Join(dir, scratchDirName), filepath.Dir(path))
}

func TestPayloadRef_Missing(t *testing.T) {
	tier, _ := openTestTier(t)

	_, err := tier.PayloadRef(context.Background(), "absent")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestClose_ClearsScratch(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tier, err := Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, tier.SavePayload(ctx, &core.Payload{RecordId: "a", Bytes: []byte{1}}))
	_, err = tier.(*Tier).PayloadRef(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, tier.Close())

	_, err = os.Stat(filepath.Join(dir, scratchDirName))
	assert.True(t, os.IsNotExist(err))
}
