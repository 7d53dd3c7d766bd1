// Copyright 2026 Shelfworks
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package tana keeps a catalog of user-owned documents persisted through
// whichever storage tier the environment supports. The in-memory catalog is
// the source of truth for reads; every mutation persists to the active tier
// before it becomes visible in the catalog.
package tana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/datauri"
	"github.com/shelfworks/tana/storage"
	"github.com/shelfworks/tana/storage/flat"
)

// Catalog is the facade over the record cache and the active storage tier.
// All methods are safe for concurrent use.
type Catalog struct {
	dir    string
	logger *slog.Logger
	clock  func() time.Time

	tier storage.Tier
	// ref is non-nil when the active tier can hand out payload references
	// instead of embedding content.
	ref storage.PayloadReferencer

	mu           sync.RWMutex
	records      []*core.Record
	observers    map[int]func([]*core.Record)
	nextObserver int
	closed       bool
}

// Open selects a storage tier for dir, loads the catalog into memory, and
// returns the ready facade. Tier selection and the initial load never fail:
// unavailable tiers degrade to the next one down, and an unreadable catalog
// starts empty.
func Open(ctx context.Context, dir string, opts ...Option) (*Catalog, error) {
	if dir == "" {
		return nil, errors.New("data directory is required")
	}

	options := &catalogOptions{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.probe == nil {
		options.probe = defaultProbe(dir)
	}

	tier := options.tier
	if tier == nil {
		tier = selectTier(ctx, dir, options.probe, options.logger)
	}

	c := &Catalog{
		dir:       dir,
		logger:    options.logger,
		clock:     options.clock,
		tier:      tier,
		observers: map[int]func([]*core.Record){},
	}
	if ref, ok := tier.(storage.PayloadReferencer); ok {
		c.ref = ref
	}

	c.records = c.loadInitial(ctx)
	c.logger.Info("catalog open", "tier", c.tier.Kind(), "records", len(c.records))
	return c, nil
}

// loadInitial reads the catalog from the active tier, falling back to the
// flat store when that read fails. A double failure starts the catalog
// empty; writes still go to the selected tier.
func (c *Catalog) loadInitial(ctx context.Context) []*core.Record {
	records, err := c.tier.LoadAll(ctx)
	if err == nil {
		return records
	}
	c.logger.Warn("loading catalog from active tier failed",
		"tier", c.tier.Kind(), "error", err)

	if c.tier.Kind() != storage.KindFlat {
		fallback, ferr := flat.Open(c.dir, c.logger)
		if ferr == nil {
			defer fallback.Close()
			if records, ferr = fallback.LoadAll(ctx); ferr == nil {
				c.logger.Info("catalog loaded from flat store fallback", "records", len(records))
				return records
			}
		}
		err = ferr
	}

	c.logger.Warn("no readable catalog, starting empty", "error", err)
	return []*core.Record{}
}

// ActiveTier reports which storage tier mutations are routed to.
func (c *Catalog) ActiveTier() storage.Kind {
	return c.tier.Kind()
}

// Records returns the catalog, newest first.
func (c *Catalog) Records() []*core.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshotLocked()
}

// Record returns the record with the given id, if present.
func (c *Catalog) Record(id string) (*core.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if idx := c.indexLocked(id); idx >= 0 {
		return c.records[idx], true
	}
	return nil, false
}

// AddRecord validates the draft, stamps it with an id and today's date, and
// persists it as the newest record. The payload, when given and the record's
// file type carries one, is stored best-effort: the returned outcome reports
// whether it landed, and a payload failure never fails the add.
func (c *Catalog) AddRecord(ctx context.Context, draft core.Draft, payload []byte) (*core.Record, core.PayloadOutcome, error) {
	if err := core.ValidateDraft(draft); err != nil {
		return nil, core.PayloadNotAttempted, err
	}

	rec, outcome, err := c.add(ctx, draft, payload)
	if err != nil {
		return nil, outcome, err
	}

	c.notify()
	return rec, outcome, nil
}

func (c *Catalog) add(ctx context.Context, draft core.Draft, payload []byte) (*core.Record, core.PayloadOutcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, core.PayloadNotAttempted, storage.ErrClosed
	}

	rec := core.NewRecord(draft, newID(), core.DateOf(c.clock()))

	snapshot := make([]*core.Record, 0, len(c.records)+1)
	snapshot = append(snapshot, rec)
	snapshot = append(snapshot, c.records...)

	if err := c.tier.SaveRecord(ctx, rec, snapshot); err != nil {
		return nil, core.PayloadNotAttempted, fmt.Errorf("adding record: %w", err)
	}

	outcome := core.PayloadNotAttempted
	if len(payload) > 0 && rec.HasBinaryPayload() {
		p := &core.Payload{
			RecordId: rec.Id,
			MimeType: core.MIMETypeForFileType(rec.FileType),
			Bytes:    payload,
		}
		if err := c.tier.SavePayload(ctx, p); err != nil {
			c.logger.Warn("payload write degraded", "record_id", rec.Id, "error", err)
			outcome = core.PayloadDegraded
		} else {
			outcome = core.PayloadOK
		}
	}

	c.records = snapshot
	return rec, outcome, nil
}

// UpdateRecord applies the patch to the record with the given id and
// persists the result. An unknown id is a no-op returning (nil, nil).
func (c *Catalog) UpdateRecord(ctx context.Context, id string, patch core.Patch) (*core.Record, error) {
	rec, err := c.update(ctx, id, patch)
	if err != nil || rec == nil {
		return nil, err
	}

	c.notify()
	return rec, nil
}

func (c *Catalog) update(ctx context.Context, id string, patch core.Patch) (*core.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, storage.ErrClosed
	}

	idx := c.indexLocked(id)
	if idx < 0 {
		return nil, nil
	}

	merged := *c.records[idx]
	patch.Apply(&merged)

	snapshot := c.snapshotLocked()
	snapshot[idx] = &merged

	if err := c.tier.SaveRecord(ctx, &merged, snapshot); err != nil {
		return nil, fmt.Errorf("updating record %s: %w", id, err)
	}

	c.records = snapshot
	return &merged, nil
}

// DeleteRecord removes the record and any stored payload. An unknown id is
// a no-op. The payload removal is best-effort: its failure is reported in
// the outcome, never as an error.
func (c *Catalog) DeleteRecord(ctx context.Context, id string) (core.PayloadOutcome, error) {
	outcome, deleted, err := c.delete(ctx, id)
	if err != nil {
		return outcome, err
	}

	if deleted {
		c.notify()
	}
	return outcome, nil
}

func (c *Catalog) delete(ctx context.Context, id string) (core.PayloadOutcome, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.PayloadNotAttempted, false, storage.ErrClosed
	}

	idx := c.indexLocked(id)
	if idx < 0 {
		return core.PayloadNotAttempted, false, nil
	}

	snapshot := make([]*core.Record, 0, len(c.records)-1)
	snapshot = append(snapshot, c.records[:idx]...)
	snapshot = append(snapshot, c.records[idx+1:]...)

	if err := c.tier.DeleteRecord(ctx, id, snapshot); err != nil {
		return core.PayloadNotAttempted, false, fmt.Errorf("deleting record %s: %w", id, err)
	}

	outcome := core.PayloadOK
	if err := c.tier.DeletePayload(ctx, id); err != nil {
		c.logger.Warn("payload delete degraded", "record_id", id, "error", err)
		outcome = core.PayloadDegraded
	}

	c.records = snapshot
	return outcome, true, nil
}

// PayloadURI returns a URI for the record's stored content: a session-local
// reference when the active tier can produce one, otherwise the embedded
// data-URI form. Missing records, missing payloads, and read failures all
// yield ("", false).
func (c *Catalog) PayloadURI(ctx context.Context, id string) (string, bool) {
	rec, ok := c.Record(id)
	if !ok {
		return "", false
	}

	if c.ref != nil {
		uri, err := c.ref.PayloadRef(ctx, id)
		if err != nil {
			c.logger.Debug("payload reference unavailable", "record_id", id, "error", err)
			return "", false
		}
		return uri, true
	}

	return c.embeddedURI(ctx, rec)
}

// EmbeddedPayloadURI returns the self-contained data-URI form of the
// record's stored content, regardless of tier.
func (c *Catalog) EmbeddedPayloadURI(ctx context.Context, id string) (string, bool) {
	rec, ok := c.Record(id)
	if !ok {
		return "", false
	}

	return c.embeddedURI(ctx, rec)
}

func (c *Catalog) embeddedURI(ctx context.Context, rec *core.Record) (string, bool) {
	p, err := c.tier.Payload(ctx, rec.Id)
	if err != nil {
		c.logger.Debug("payload unavailable", "record_id", rec.Id, "error", err)
		return "", false
	}

	mime := p.MimeType
	if mime == "" {
		mime = core.MIMETypeForFileType(rec.FileType)
	}
	return datauri.Format(mime, p.Bytes), true
}

// Subscribe registers fn to be called with a fresh snapshot after every
// successful mutation, outside the catalog lock. The returned cancel func
// removes the subscription.
func (c *Catalog) Subscribe(fn func([]*core.Record)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Close releases the active tier. Mutations on a closed catalog fail with
// storage.ErrClosed; reads keep serving the cache.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.tier.Close(); err != nil {
		c.logger.Error("error closing storage tier", "err", err)
		return err
	}
	return nil
}

// notify hands every observer a fresh snapshot. Observers run outside the
// lock so they can call back into the catalog.
func (c *Catalog) notify() {
	c.mu.RLock()
	observers := make([]func([]*core.Record), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	snapshot := c.snapshotLocked()
	c.mu.RUnlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func (c *Catalog) snapshotLocked() []*core.Record {
	out := make([]*core.Record, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Catalog) indexLocked(id string) int {
	for i, r := range c.records {
		if r.Id == id {
			return i
		}
	}
	return -1
}

// newID returns a time-ordered unique record id.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
