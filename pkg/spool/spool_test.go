package spool

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// wrapped returns a buffer whose content straddles the end of its storage.
func wrapped() *circlebuf.Buffer {
	b := circlebuf.New(nil)
	b.Reserve(8)
	b.PushBack([]byte("xxxxxx"))
	b.DiscardFront(4)
	b.PushBack([]byte("hello"))
	b.DiscardFront(2)
	return b
}

func TestCapture(t *testing.T) {
	b := wrapped()
	snap := Capture("mic", b)
	if string(snap.Data) != "hello" || snap.Capacity != 8 || snap.Size != 5 {
		t.Errorf("snapshot=%+v", snap.Info())
	}
	if b.Len() != 5 {
		t.Errorf("Capture consumed the buffer: Len()=%d", b.Len())
	}

	rb := snap.Buffer(nil)
	if rb.Cap() != 8 || !bytes.Equal(rb.Bytes(), []byte("hello")) {
		t.Errorf("rebuilt cap=%d bytes=%q", rb.Cap(), rb.Bytes())
	}
}

func TestSpool(t *testing.T) {
	ctx := context.Background()
	for name, idx := range testIndexes(t) {
		t.Run(name, func(t *testing.T) {
			sp := New(idx, Options{})

			first, err := sp.Save(ctx, "mic", wrapped())
			if err != nil {
				t.Fatal(err)
			}
			second, _ := sp.Save(ctx, "mic", circlebuf.New(nil))
			sp.Save(ctx, "other", wrapped())

			infos, err := sp.List(ctx, "mic")
			if err != nil {
				t.Fatal(err)
			}
			if len(infos) != 2 || infos[0].ID != first.ID || infos[1].ID != second.ID {
				t.Fatalf("List=%+v", infos)
			}
			all, _ := sp.List(ctx, "")
			if len(all) != 3 {
				t.Errorf("List all returned %d", len(all))
			}

			latest, err := sp.Latest(ctx, "mic")
			if err != nil || latest.ID != second.ID {
				t.Errorf("Latest=%+v,%v", latest, err)
			}

			b, err := sp.Load(ctx, first.ID)
			if err != nil {
				t.Fatal(err)
			}
			if string(b.Bytes()) != "hello" || b.Cap() != 8 {
				t.Errorf("Load bytes=%q cap=%d", b.Bytes(), b.Cap())
			}

			empty, err := sp.Load(ctx, second.ID)
			if err != nil || empty.Len() != 0 || empty.Cap() != 0 {
				t.Errorf("Load empty: len=%d cap=%d err=%v", empty.Len(), empty.Cap(), err)
			}

			if err := sp.Delete(ctx, first.ID); err != nil {
				t.Fatal(err)
			}
			if _, err := sp.Load(ctx, first.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Load deleted: %v", err)
			}
			if _, err := sp.Latest(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Latest missing: %v", err)
			}
		})
	}
}

func TestSpool_Prune(t *testing.T) {
	ctx := context.Background()
	sp := New(NewMemory(), Options{})
	var ids []string
	for range 4 {
		info, _ := sp.Save(ctx, "mic", wrapped())
		ids = append(ids, info.ID)
	}
	n, err := sp.Prune(ctx, "mic", 1)
	if err != nil || n != 3 {
		t.Fatalf("Prune=%d,%v", n, err)
	}
	infos, _ := sp.List(ctx, "mic")
	if len(infos) != 1 || infos[0].ID != ids[3] {
		t.Errorf("left=%+v", infos)
	}
	if n, _ := sp.Prune(ctx, "mic", 5); n != 0 {
		t.Errorf("Prune below keep removed %d", n)
	}
}

func TestSpool_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			sp := New(NewMemory(), Options{Archive: store})
			info, _ := sp.Save(ctx, "mic", wrapped())

			path, err := sp.Archive(ctx, info.ID)
			if err != nil {
				t.Fatal(err)
			}
			if path != "snapshots/"+info.ID+".msgpack" {
				t.Errorf("path=%q", path)
			}

			sp.Delete(ctx, info.ID)
			restored, err := sp.Restore(ctx, info.ID)
			if err != nil {
				t.Fatal(err)
			}
			if restored.ID != info.ID || restored.Size != 5 {
				t.Errorf("restored=%+v", restored)
			}
			b, err := sp.Load(ctx, info.ID)
			if err != nil || string(b.Bytes()) != "hello" {
				t.Errorf("Load after restore=%q,%v", b.Bytes(), err)
			}
		})
	}
}

func TestSpool_NoArchive(t *testing.T) {
	sp := New(NewMemory(), Options{})
	if _, err := sp.Archive(context.Background(), "x"); !errors.Is(err, ErrNoArchive) {
		t.Errorf("Archive: %v", err)
	}
	if _, err := sp.Restore(context.Background(), "x"); !errors.Is(err, ErrNoArchive) {
		t.Errorf("Restore: %v", err)
	}
}
