package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-crypt/x/blake2b"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/datauri"
	"github.com/shelfworks/tana/storage"
)

// SavePayload upserts a record's content. Bytes are stored as a numeric
// sequence with a digest computed at save time.
func (t *Tier) SavePayload(ctx context.Context, p *core.Payload) error {
	_, err := t.db.ExecContext(ctx, `
		INSERT INTO payloads (id, mime_type, digest, content) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mime_type = excluded.mime_type,
			digest = excluded.digest,
			content = excluded.content`,
		p.RecordId, p.MimeType, digestOf(p.Bytes), encodeNumeric(p.Bytes))
	if err != nil {
		return fmt.Errorf("persisting payload %s: %w", p.RecordId, err)
	}
	return nil
}

// Payload reads a record's content back, normalizing whatever shape is in
// the row and verifying the stored digest when one is present.
func (t *Tier) Payload(ctx context.Context, id string) (*core.Payload, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT mime_type, digest, content FROM payloads WHERE id = ?`, id)

	var (
		mime    string
		digest  string
		content any
	)
	err := row.Scan(&mime, &digest, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payload %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", id, err)
	}

	b, err := normalizeContent(content)
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", id, err)
	}

	// An empty digest means a foreign writer; nothing to verify against.
	if digest != "" && digestOf(b) != digest {
		return nil, fmt.Errorf("payload %s: %w", id, storage.ErrPayloadIntegrity)
	}

	return &core.Payload{RecordId: id, MimeType: mime, Bytes: b}, nil
}

// DeletePayload removes a record's content. Deleting absent content is not
// an error.
func (t *Tier) DeletePayload(ctx context.Context, id string) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM payloads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting payload %s: %w", id, err)
	}
	return nil
}

// digestOf returns the hex BLAKE2b-256 digest of payload bytes.
func digestOf(b []byte) string {
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// encodeNumeric renders payload bytes as a JSON array of numbers. Plain
// numeric text is the one content shape that survives every round trip
// through the storage layer; raw blobs and base64-looking strings do not.
func encodeNumeric(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b)*4 + 2)

	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')

	return sb.String()
}

// normalizeContent converts any content shape found in a payload row to
// bytes: a raw blob (foreign writer), the canonical numeric sequence, or
// base64 text with or without a URI prefix.
func normalizeContent(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return decodeContentText(v)
	case nil:
		return []byte{}, nil
	default:
		return nil, fmt.Errorf("unsupported payload content type %T", value)
	}
}

func decodeContentText(s string) ([]byte, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		return decodeNumeric(s)
	}
	return datauri.DecodeText(s)
}

func decodeNumeric(s string) ([]byte, error) {
	var nums []int
	if err := json.Unmarshal([]byte(s), &nums); err != nil {
		return nil, fmt.Errorf("decoding numeric payload: %w", err)
	}

	b := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("numeric payload value %d out of byte range", n)
		}
		b[i] = byte(n)
	}
	return b, nil
}
