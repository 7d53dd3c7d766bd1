// Package flat implements the last-resort storage tier: the whole record
// collection as one JSON value in a flat key/value file. Persistence here is
// best-effort by contract; a failed write is logged and swallowed, never
// surfaced. Payload content is not stored at this tier.
package flat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/storage"
)

const (
	// recordsKey is the fixed key holding the whole record collection.
	recordsKey = "records"

	// storeFileName is the default backing file under the data directory.
	storeFileName = "catalog.json"
)

// Tier persists records through a storage.FlatKV.
type Tier struct {
	kv     storage.FlatKV
	logger *slog.Logger
}

var _ storage.Tier = (*Tier)(nil)

// Open opens a flat tier backed by <dir>/catalog.json.
func Open(dir string, logger *slog.Logger) (storage.Tier, error) {
	kv, err := OpenFileKV(filepath.Join(dir, storeFileName), logger)
	if err != nil {
		return nil, err
	}
	return New(kv, logger), nil
}

// New assembles a flat tier from a key/value capability.
func New(kv storage.FlatKV, logger *slog.Logger) *Tier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tier{kv: kv, logger: logger}
}

// Kind reports storage.KindFlat.
func (t *Tier) Kind() storage.Kind {
	return storage.KindFlat
}

// LoadAll parses the stored collection. An absent key is an empty catalog.
func (t *Tier) LoadAll(ctx context.Context) ([]*core.Record, error) {
	text, ok := t.kv.Get(recordsKey)
	if !ok {
		return []*core.Record{}, nil
	}

	records, err := storage.DecodeRecords(text)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	return records, nil
}

// SaveRecord persists the full post-mutation snapshot. A failed store write
// is logged and swallowed; the caller's in-memory state stays authoritative.
func (t *Tier) SaveRecord(ctx context.Context, rec *core.Record, snapshot []*core.Record) error {
	return t.writeSnapshot(snapshot)
}

// DeleteRecord persists the full post-mutation snapshot.
func (t *Tier) DeleteRecord(ctx context.Context, id string, snapshot []*core.Record) error {
	return t.writeSnapshot(snapshot)
}

func (t *Tier) writeSnapshot(snapshot []*core.Record) error {
	text, err := storage.EncodeRecords(snapshot)
	if err != nil {
		return fmt.Errorf("persisting records: %w", err)
	}
	if err := t.kv.Set(recordsKey, text); err != nil {
		t.logger.Warn("flat store write failed, keeping in-memory state", "error", err)
	}
	return nil
}

// SavePayload always degrades; this tier never stores content.
func (t *Tier) SavePayload(ctx context.Context, p *core.Payload) error {
	return fmt.Errorf("saving payload %s: %w", p.RecordId, storage.ErrPayloadUnavailable)
}

// Payload reports every payload as absent.
func (t *Tier) Payload(ctx context.Context, id string) (*core.Payload, error) {
	return nil, fmt.Errorf("payload %s: %w", id, storage.ErrNotFound)
}

// DeletePayload succeeds as a no-op; there is nothing to remove here.
func (t *Tier) DeletePayload(ctx context.Context, id string) error {
	return nil
}

// Close releases nothing; the backing store holds no open resources.
func (t *Tier) Close() error {
	return nil
}
