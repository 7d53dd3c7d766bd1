package native

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/shelfworks/tana/storage"
)

// badgerKV implements storage.KeyValue on a BadgerDB instance.
type badgerKV struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ storage.KeyValue = (*badgerKV)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenKeyValue opens the structured store at the specified path.
// Creates the directory if it doesn't exist.
func OpenKeyValue(path string, logger *slog.Logger) (storage.KeyValue, error) {
	return openKV(path, false, logger)
}

// OpenMemoryKeyValue opens an in-memory structured store for testing.
func OpenMemoryKeyValue(logger *slog.Logger) (storage.KeyValue, error) {
	return openKV("", true, logger)
}

func openKV(path string, inMemory bool, logger *slog.Logger) (storage.KeyValue, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(path, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(path)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerKV{
		db:     db,
		logger: logger,
	}, nil
}

// withTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *badgerKV) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Get returns the value stored under key, and whether the key exists.
func (b *badgerKV) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)

	err := b.withTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			found = true
			return nil
		})
	}, false)
	if err != nil {
		return "", false, fmt.Errorf("reading key %s: %w", key, err)
	}

	return value, found, nil
}

// Set stores value under key, replacing any previous value.
func (b *badgerKV) Set(ctx context.Context, key, value string) error {
	err := b.withTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(key), []byte(value)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}

// Close closes the BadgerDB database.
func (b *badgerKV) Close() error {
	return b.db.Close()
}
