package spool

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"sync"
)

// Memory is an Index held in a map. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[key.String()]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	v := bytes.Clone(value)
	m.mu.Lock()
	m.data[key.String()] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	delete(m.data, key.String())
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := prefixBytes(prefix)

	m.mu.RLock()
	var keys []string
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), p) {
			keys = append(keys, k)
		}
	}
	vals := make(map[string][]byte, len(keys))
	for _, k := range keys {
		vals[k] = bytes.Clone(m.data[k])
	}
	m.mu.RUnlock()
	slices.Sort(keys)

	return func(yield func(Entry, error) bool) {
		for _, k := range keys {
			if !yield(Entry{Key: decodeKey([]byte(k)), Value: vals[k]}, nil) {
				return
			}
		}
	}
}

func (m *Memory) BatchDelete(_ context.Context, keys []Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k.String())
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
