package spool

import (
	"context"
	"errors"
	"fmt"
	"iter"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/haivivi/circlebuf/pkg/blog"
)

// Badger is an Index stored in a BadgerDB database.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures a Badger index.
type BadgerOptions struct {
	// Dir holds the database files. Required unless InMemory is set.
	Dir string

	// InMemory keeps everything in memory.
	InMemory bool

	// Logger overrides the badger logger. The default forwards warnings and
	// errors to slog.
	Logger badger.Logger
}

// OpenBadger opens or creates a Badger index.
func OpenBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("spool: badger dir is required")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(slogLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("spool: open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(encodeKey(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return val, err
}

func (b *Badger) Set(_ context.Context, key Key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(encodeKey(key), value)
	})
}

func (b *Badger) Delete(_ context.Context, key Key) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(encodeKey(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := prefixBytes(prefix)
	return func(yield func(Entry, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = p
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					if !yield(Entry{}, err) {
						return nil
					}
					continue
				}
				if !yield(Entry{Key: decodeKey(item.KeyCopy(nil)), Value: val}, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

func (b *Badger) BatchDelete(_ context.Context, keys []Key) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(encodeKey(k)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// slogLogger forwards badger warnings and errors to slog.
type slogLogger struct{}

func (slogLogger) Errorf(f string, v ...any) {
	blog.Error("spool: badger: " + fmt.Sprintf(f, v...))
}

func (slogLogger) Warningf(f string, v ...any) {
	blog.Warn("spool: badger: " + fmt.Sprintf(f, v...))
}

func (slogLogger) Infof(string, ...any)  {}
func (slogLogger) Debugf(string, ...any) {}
