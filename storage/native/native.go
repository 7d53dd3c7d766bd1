// Package native implements the full-capability storage tier: record
// metadata in a structured key/value store (BadgerDB) and payload content as
// individual text files in a payload file area.
//
// Either sub-capability may be absent at runtime. The tier stays selected
// and degrades per operation: record operations without the key/value store
// report storage.ErrUnavailable, payload writes without the file area report
// storage.ErrPayloadUnavailable.
package native

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/datauri"
	"github.com/shelfworks/tana/storage"
)

const (
	// recordsKey is the fixed key holding the whole record collection.
	recordsKey = "records"

	// PayloadsDir is the file-area directory holding payload files.
	PayloadsDir = "payloads"
)

// Tier persists records through a storage.KeyValue and payloads through a
// storage.FileArea. Pass nil for a capability that could not be acquired.
type Tier struct {
	kv     storage.KeyValue
	files  storage.FileArea
	logger *slog.Logger
}

var _ storage.Tier = (*Tier)(nil)

// New assembles a native tier from its capabilities. kv and files may each
// be nil; dependent operations then degrade instead of failing at startup.
func New(kv storage.KeyValue, files storage.FileArea, logger *slog.Logger) *Tier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tier{
		kv:     kv,
		files:  files,
		logger: logger,
	}
}

// Kind reports storage.KindNative.
func (t *Tier) Kind() storage.Kind {
	return storage.KindNative
}

// LoadAll returns every stored record, newest first. An absent records key
// is an empty catalog, not an error.
func (t *Tier) LoadAll(ctx context.Context) ([]*core.Record, error) {
	if t.kv == nil {
		return nil, fmt.Errorf("loading records: %w", storage.ErrUnavailable)
	}

	text, ok, err := t.kv.Get(ctx, recordsKey)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if !ok {
		return []*core.Record{}, nil
	}

	records, err := storage.DecodeRecords(text)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return records, nil
}

// SaveRecord persists the full post-mutation snapshot. The individual record
// is already part of snapshot; there is no partial write.
func (t *Tier) SaveRecord(ctx context.Context, rec *core.Record, snapshot []*core.Record) error {
	return t.writeSnapshot(ctx, snapshot)
}

// DeleteRecord persists the full post-mutation snapshot.
func (t *Tier) DeleteRecord(ctx context.Context, id string, snapshot []*core.Record) error {
	return t.writeSnapshot(ctx, snapshot)
}

func (t *Tier) writeSnapshot(ctx context.Context, snapshot []*core.Record) error {
	if t.kv == nil {
		return fmt.Errorf("persisting records: %w", storage.ErrUnavailable)
	}

	text, err := storage.EncodeRecords(snapshot)
	if err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}
	if err := t.kv.Set(ctx, recordsKey, text); err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}
	return nil
}

// SavePayload writes the payload as an encoded text file in the payload
// directory.
func (t *Tier) SavePayload(ctx context.Context, p *core.Payload) error {
	if t.files == nil {
		return fmt.Errorf("saving payload %s: %w", p.RecordId, storage.ErrPayloadUnavailable)
	}

	text := datauri.EncodeText(p.Bytes)
	if err := t.files.WriteFile(ctx, payloadFileName(p.RecordId), text); err != nil {
		return fmt.Errorf("saving payload %s: %w", p.RecordId, err)
	}
	return nil
}

// Payload reads a payload file back. Text content is decoded; raw content
// (a foreign writer) is used as-is.
func (t *Tier) Payload(ctx context.Context, id string) (*core.Payload, error) {
	if t.files == nil {
		return nil, fmt.Errorf("reading payload %s: %w", id, storage.ErrNotFound)
	}

	content, err := t.files.ReadFile(ctx, payloadFileName(id))
	if err != nil {
		return nil, err
	}

	b := content.Data
	if !content.Raw {
		b, err = datauri.DecodeText(string(content.Data))
		if err != nil {
			return nil, fmt.Errorf("reading payload %s: %w", id, err)
		}
	}

	return &core.Payload{RecordId: id, Bytes: b}, nil
}

// DeletePayload removes the payload file. A missing file area or a missing
// file is not an error.
func (t *Tier) DeletePayload(ctx context.Context, id string) error {
	if t.files == nil {
		t.logger.Warn("payload file area unavailable, skipping delete", "record_id", id)
		return nil
	}
	return t.files.DeleteFile(ctx, payloadFileName(id))
}

// Close releases the key/value store. The file area holds no resources.
func (t *Tier) Close() error {
	if t.kv == nil {
		return nil
	}
	return t.kv.Close()
}

func payloadFileName(id string) string {
	return PayloadsDir + "/" + id + ".b64"
}
