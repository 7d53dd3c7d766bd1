package storage

import (
	"context"

	"github.com/shelfworks/tana/core"
)

// Kind identifies a tier implementation.
type Kind string

const (
	// KindNative is the full-capability tier: structured key/value records
	// plus a payload file area.
	KindNative Kind = "native"

	// KindTransactional is the single-file transactional tier.
	KindTransactional Kind = "transactional"

	// KindFlat is the last-resort tier: the whole catalog as one JSON value.
	KindFlat Kind = "flat"
)

// Tier is one complete persistence strategy for records and payloads.
// The catalog facade selects exactly one tier at startup and routes every
// durable operation through it. Implementations must be thread-safe and
// support concurrent access.
type Tier interface {
	// Kind reports which tier this is.
	Kind() Kind

	// LoadAll returns every stored record, newest first.
	// An empty store yields an empty slice, not an error.
	LoadAll(ctx context.Context) ([]*core.Record, error)

	// SaveRecord persists one record (create or replace by id). snapshot is
	// the caller's full post-mutation collection, newest first; tiers that
	// persist the whole collection at once write snapshot, tiers with
	// per-record storage ignore it.
	SaveRecord(ctx context.Context, rec *core.Record, snapshot []*core.Record) error

	// DeleteRecord removes the record with the given id, following the same
	// snapshot contract as SaveRecord. Deleting an absent id is not an error.
	DeleteRecord(ctx context.Context, id string, snapshot []*core.Record) error

	// SavePayload stores a record's binary content, replacing any previous
	// content for the same record id. Tiers that cannot store payloads
	// return ErrPayloadUnavailable.
	SavePayload(ctx context.Context, p *core.Payload) error

	// Payload retrieves stored content by record id.
	// Returns ErrNotFound when no content is stored for the id.
	Payload(ctx context.Context, id string) (*core.Payload, error)

	// DeletePayload removes stored content by record id.
	// Deleting absent content is not an error.
	DeletePayload(ctx context.Context, id string) error

	// Close releases the tier's resources.
	Close() error
}

// PayloadReferencer is an optional Tier capability. Tiers that can hand out
// a short-lived local reference to stored content implement it; the facade
// discovers it by type assertion and falls back to an embedded data URI for
// tiers that don't.
type PayloadReferencer interface {
	// PayloadRef returns a URI referencing the stored content for a record
	// id. The reference is only valid for the current session.
	PayloadRef(ctx context.Context, id string) (string, error)
}

// KeyValue is the structured text store consumed by the native tier.
// The capability may be absent at runtime; the tier degrades per operation.
type KeyValue interface {
	// Get returns the value stored under key, and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the store.
	Close() error
}

// FileContent is the result of a FileArea read. Payload files are written as
// encoded text, but a read may surface raw bytes (a foreign writer, or a
// backing store that returns binary); Raw tells the caller which it got.
type FileContent struct {
	Data []byte
	Raw  bool
}

// FileArea is the directory-scoped payload file capability consumed by the
// native tier. Paths are slash-separated and relative to the area root.
type FileArea interface {
	// EnsureDir creates a directory if it does not already exist.
	// An existing directory is not an error.
	EnsureDir(ctx context.Context, name string) error

	// WriteFile stores text under name, replacing any previous content.
	WriteFile(ctx context.Context, name, text string) error

	// ReadFile returns the content stored under name.
	// Returns ErrNotFound when no such file exists.
	ReadFile(ctx context.Context, name string) (FileContent, error)

	// DeleteFile removes the file under name. Absent files are not an error.
	DeleteFile(ctx context.Context, name string) error
}

// FlatKV is the synchronous string store consumed by the flat tier. Set may
// fail on quota or disk errors; the flat tier treats persistence as
// best-effort and swallows those failures.
type FlatKV interface {
	// Get returns the value stored under key, and whether the key exists.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}
