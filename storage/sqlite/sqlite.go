// Package sqlite implements the transactional storage tier: records and
// payloads in two collections of a single SQLite database file, one
// operation per transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shelfworks/tana/core"
	"github.com/shelfworks/tana/storage"
)

const (
	// dbFileName is the fixed database file name under the data directory.
	dbFileName = "catalog.db"

	// scratchDirName holds session-scoped payload spill files.
	scratchDirName = "scratch"

	// schemaVersion gates schema creation via PRAGMA user_version: the DDL
	// runs only when the recorded version is behind.
	schemaVersion = 1

	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	maxIdleConns    = 1
	connMaxLifetime = 5 * time.Minute
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
  id TEXT PRIMARY KEY,
  added_date TEXT NOT NULL,
  body TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS payloads (
  id TEXT PRIMARY KEY,
  mime_type TEXT NOT NULL,
  digest TEXT NOT NULL,
  content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_added_date ON records(added_date DESC);
`

// Tier wraps the SQLite database.
type Tier struct {
	db     *sql.DB
	dir    string
	logger *slog.Logger
}

var (
	_ storage.Tier              = (*Tier)(nil)
	_ storage.PayloadReferencer = (*Tier)(nil)
)

// Open opens the tier's database at <dir>/catalog.db and bootstraps the
// schema. The scratch directory from any previous session is cleared.
func Open(dir string, logger *slog.Logger) (storage.Tier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn, err := sqliteDSN(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configureDB(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	t := &Tier{db: db, dir: dir, logger: logger}
	t.resetScratch()
	return t, nil
}

// Kind reports storage.KindTransactional.
func (t *Tier) Kind() storage.Kind {
	return storage.KindTransactional
}

// Close clears session-scoped scratch files and closes the database.
func (t *Tier) Close() error {
	if t == nil || t.db == nil {
		return nil
	}
	t.resetScratch()
	return t.db.Close()
}

// LoadAll returns every stored record, newest first. Records added on the
// same date come back in reverse insertion order, matching the newest-first
// convention of the other tiers.
func (t *Tier) LoadAll(ctx context.Context) ([]*core.Record, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT body FROM records ORDER BY added_date DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	defer rows.Close()

	records := []*core.Record{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("loading records: %w", err)
		}
		var rec core.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	return records, nil
}

// SaveRecord upserts one record by id. The update path preserves the row's
// rowid so same-date ordering stays stable across updates. snapshot is
// ignored; this tier stores records individually.
func (t *Tier) SaveRecord(ctx context.Context, rec *core.Record, snapshot []*core.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", rec.Id, err)
	}

	_, err = t.db.ExecContext(ctx, `
		INSERT INTO records (id, added_date, body) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			added_date = excluded.added_date,
			body = excluded.body`,
		rec.Id, rec.AddedDate.String(), string(body))
	if err != nil {
		return fmt.Errorf("persisting record %s: %w", rec.Id, err)
	}
	return nil
}

// DeleteRecord removes one record by id. Deleting an absent id is not an
// error. snapshot is ignored.
func (t *Tier) DeleteRecord(ctx context.Context, id string, snapshot []*core.Record) error {
	if _, err := t.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting record %s: %w", id, err)
	}
	return nil
}

// PayloadRef spills the payload for id into the scratch directory and
// returns a file:// URI. References are only valid for the current session;
// the scratch directory is cleared on Open and Close.
func (t *Tier) PayloadRef(ctx context.Context, id string) (string, error) {
	p, err := t.Payload(ctx, id)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(t.dir, scratchDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}

	f, err := os.CreateTemp(dir, id+"-*")
	if err != nil {
		return "", fmt.Errorf("creating scratch file for %s: %w", id, err)
	}
	if _, err := f.Write(p.Bytes); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing scratch file for %s: %w", id, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing scratch file for %s: %w", id, err)
	}

	u := url.URL{Scheme: "file", Path: f.Name()}
	return u.String(), nil
}

func (t *Tier) resetScratch() {
	if err := os.RemoveAll(filepath.Join(t.dir, scratchDirName)); err != nil {
		t.logger.Warn("clearing scratch directory", "error", err)
	}
}

// migrate applies the schema when the database is new or behind the current
// version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning schema upgrade: %w", err)
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("applying schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recording schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema upgrade: %w", err)
	}
	return nil
}

func configureDB(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Tune connection pool for local single-writer usage.
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	return nil
}

func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", errors.New("db path is required")
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), nil
}
