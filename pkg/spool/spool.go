package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/circlebuf/pkg/bmem"
	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// ErrNoArchive is returned by Archive and Restore on a spool without a
// FileStore.
var ErrNoArchive = errors.New("spool: no archive store configured")

// Spool saves and restores buffer snapshots.
type Spool struct {
	index   Index
	archive FileStore
	alloc   bmem.Allocator
	logger  *slog.Logger
}

// Options configures a Spool.
type Options struct {
	// Archive receives archived snapshots. Optional.
	Archive FileStore

	// Allocator backs buffers returned by Load. Nil uses bmem.Default.
	Allocator bmem.Allocator

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// New returns a spool over index.
func New(index Index, opts Options) *Spool {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Spool{
		index:   index,
		archive: opts.Archive,
		alloc:   opts.Allocator,
		logger:  logger,
	}
}

func snapKey(id string) Key {
	return Key{"snap", id}
}

func archivePath(id string) string {
	return "snapshots/" + id + ".msgpack"
}

// Save snapshots b under name and returns the snapshot metadata.
func (s *Spool) Save(ctx context.Context, name string, b *circlebuf.Buffer) (Info, error) {
	snap := Capture(name, b)
	if err := s.put(ctx, snap); err != nil {
		return Info{}, err
	}
	s.logger.Debug("spool: saved", "id", snap.ID, "name", name, "size", snap.Size, "capacity", snap.Capacity)
	return snap.Info(), nil
}

func (s *Spool) put(ctx context.Context, snap *Snapshot) error {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("spool: encode %s: %w", snap.ID, err)
	}
	if err := s.index.Set(ctx, snapKey(snap.ID), data); err != nil {
		return fmt.Errorf("spool: store %s: %w", snap.ID, err)
	}
	return nil
}

// Get returns the snapshot with the given id.
func (s *Spool) Get(ctx context.Context, id string) (*Snapshot, error) {
	data, err := s.index.Get(ctx, snapKey(id))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("spool: snapshot %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("spool: decode %s: %w", id, err)
	}
	return &snap, nil
}

// Load rebuilds the buffer saved under id.
func (s *Spool) Load(ctx context.Context, id string) (*circlebuf.Buffer, error) {
	snap, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return snap.Buffer(s.alloc), nil
}

// List returns the metadata of all snapshots, oldest first. A non-empty name
// keeps only snapshots with that name.
func (s *Spool) List(ctx context.Context, name string) ([]Info, error) {
	var infos []Info
	for e, err := range s.index.List(ctx, Key{"snap"}) {
		if err != nil {
			return nil, err
		}
		var info Info
		if err := msgpack.Unmarshal(e.Value, &info); err != nil {
			s.logger.Warn("spool: skipping malformed snapshot", "key", e.Key.String(), "err", err)
			continue
		}
		if name != "" && info.Name != name {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Latest returns the newest snapshot named name.
func (s *Spool) Latest(ctx context.Context, name string) (Info, error) {
	infos, err := s.List(ctx, name)
	if err != nil {
		return Info{}, err
	}
	if len(infos) == 0 {
		return Info{}, fmt.Errorf("spool: snapshot %q: %w", name, ErrNotFound)
	}
	return infos[len(infos)-1], nil
}

// Delete removes the snapshot with the given id. Archived copies are kept.
func (s *Spool) Delete(ctx context.Context, id string) error {
	if err := s.index.Delete(ctx, snapKey(id)); err != nil {
		return fmt.Errorf("spool: delete %s: %w", id, err)
	}
	s.logger.Debug("spool: deleted", "id", id)
	return nil
}

// Prune deletes all but the newest keep snapshots named name and returns how
// many were removed.
func (s *Spool) Prune(ctx context.Context, name string, keep int) (int, error) {
	infos, err := s.List(ctx, name)
	if err != nil {
		return 0, err
	}
	if len(infos) <= keep {
		return 0, nil
	}
	drop := infos[:len(infos)-max(keep, 0)]
	keys := make([]Key, len(drop))
	for i, info := range drop {
		keys[i] = snapKey(info.ID)
	}
	if err := s.index.BatchDelete(ctx, keys); err != nil {
		return 0, fmt.Errorf("spool: prune %q: %w", name, err)
	}
	s.logger.Debug("spool: pruned", "name", name, "removed", len(drop))
	return len(drop), nil
}

// Archive copies the snapshot with the given id to the archive store and
// returns its path there.
func (s *Spool) Archive(ctx context.Context, id string) (string, error) {
	if s.archive == nil {
		return "", ErrNoArchive
	}
	snap, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	path := archivePath(id)
	w, err := s.archive.Write(ctx, path)
	if err != nil {
		return "", fmt.Errorf("spool: archive %s: %w", id, err)
	}
	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		w.Close()
		return "", fmt.Errorf("spool: archive %s: %w", id, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("spool: archive %s: %w", id, err)
	}
	s.logger.Info("spool: archived", "id", id, "path", path)
	return path, nil
}

// Restore reads an archived snapshot back into the index.
func (s *Spool) Restore(ctx context.Context, id string) (Info, error) {
	if s.archive == nil {
		return Info{}, ErrNoArchive
	}
	r, err := s.archive.Read(ctx, archivePath(id))
	if err != nil {
		return Info{}, fmt.Errorf("spool: restore %s: %w", id, err)
	}
	defer r.Close()

	var snap Snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return Info{}, fmt.Errorf("spool: restore %s: %w", id, err)
	}
	if err := s.put(ctx, &snap); err != nil {
		return Info{}, err
	}
	s.logger.Info("spool: restored", "id", id, "name", snap.Name)
	return snap.Info(), nil
}

// Close closes the index.
func (s *Spool) Close() error {
	return s.index.Close()
}
