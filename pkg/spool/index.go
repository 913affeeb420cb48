// Package spool persists buffer snapshots.
//
// A Snapshot is the logical content of a circlebuf.Buffer plus the capacity it
// was taken at, encoded with msgpack. Snapshots live in an Index, a small
// key-value store with path-based keys, backed by BadgerDB for durable use or
// by memory for tests. Archive copies a snapshot out to a FileStore (local
// disk or S3) and Restore brings it back.
package spool

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// ErrNotFound is returned when a snapshot or key does not exist.
var ErrNotFound = errors.New("spool: not found")

// Key is a hierarchical index key such as Key{"snap", id}. Segments must not
// contain the separator.
type Key []string

// String returns the encoded form of the key.
func (k Key) String() string {
	return strings.Join(k, string(Separator))
}

// Separator joins key segments in the encoded form.
const Separator byte = ':'

// Entry is a key-value pair returned by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Index is the key-value store snapshots are kept in.
type Index interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key Key) error

	// List yields all entries under prefix in lexicographic key order.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchDelete removes several keys in one transaction.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases the index.
	Close() error
}

func encodeKey(k Key) []byte {
	return []byte(k.String())
}

func decodeKey(b []byte) Key {
	return Key(strings.Split(string(b), string(Separator)))
}

// prefixBytes encodes prefix with a trailing separator so that "a:b" does not
// match "a:bc". An empty prefix matches everything.
func prefixBytes(prefix Key) []byte {
	if len(prefix) == 0 {
		return nil
	}
	return append(encodeKey(prefix), Separator)
}
