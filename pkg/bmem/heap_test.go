package bmem

import (
	"bytes"
	"strings"
	"testing"

	"github.com/haivivi/circlebuf/pkg/blog"
)

func TestHeap_Allocate(t *testing.T) {
	var h Heap
	p := h.Allocate(16)
	if len(p) != 16 {
		t.Fatalf("len=%d", len(p))
	}
	if !bytes.Equal(p, make([]byte, 16)) {
		t.Errorf("not zeroed: %v", p)
	}
	if h.NumAllocs() != 1 || h.InUse() != 16 {
		t.Errorf("allocs=%d inuse=%d", h.NumAllocs(), h.InUse())
	}
	h.Release(p)
	if h.NumAllocs() != 0 || h.InUse() != 0 {
		t.Errorf("after release allocs=%d inuse=%d", h.NumAllocs(), h.InUse())
	}
}

func TestHeap_Reallocate(t *testing.T) {
	var h Heap

	t.Run("nil", func(t *testing.T) {
		p := h.Reallocate(nil, 4)
		if len(p) != 4 {
			t.Fatalf("len=%d", len(p))
		}
		h.Release(p)
	})

	t.Run("grow", func(t *testing.T) {
		p := h.Allocate(3)
		copy(p, []byte{1, 2, 3})
		p = h.Reallocate(p, 6)
		if !bytes.Equal(p, []byte{1, 2, 3, 0, 0, 0}) {
			t.Errorf("got=%v", p)
		}
		if h.InUse() != 6 || h.NumAllocs() != 1 {
			t.Errorf("allocs=%d inuse=%d", h.NumAllocs(), h.InUse())
		}
		h.Release(p)
	})

	t.Run("shrink", func(t *testing.T) {
		p := h.Allocate(4)
		copy(p, []byte{9, 8, 7, 6})
		p = h.Reallocate(p, 2)
		if !bytes.Equal(p, []byte{9, 8}) {
			t.Errorf("got=%v", p)
		}
		h.Release(p)
	})

	if h.NumAllocs() != 0 || h.InUse() != 0 {
		t.Errorf("leak allocs=%d inuse=%d", h.NumAllocs(), h.InUse())
	}
}

func TestHeap_Limit(t *testing.T) {
	var crashed string
	blog.SetCrashHandler(func(msg string) { crashed = msg })
	t.Cleanup(func() { blog.SetCrashHandler(nil) })

	h := Heap{Limit: 8}
	p := h.Allocate(8)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected exhaustion panic")
			}
		}()
		h.Reallocate(p, 9)
	}()

	if !strings.Contains(crashed, "out of memory") {
		t.Errorf("crash=%q", crashed)
	}
	if h.InUse() != 8 {
		t.Errorf("inuse=%d after failed growth", h.InUse())
	}
}

func TestDefault(t *testing.T) {
	custom := &Heap{}
	SetDefault(custom)
	t.Cleanup(func() { SetDefault(nil) })

	if Default() != Allocator(custom) {
		t.Fatal("SetDefault not applied")
	}

	d := Dup([]byte("abc"))
	if string(d) != "abc" {
		t.Errorf("got=%q", d)
	}
	if custom.NumAllocs() != 1 {
		t.Errorf("allocs=%d", custom.NumAllocs())
	}
	if Dup(nil) != nil {
		t.Error("Dup(nil) should be nil")
	}

	SetDefault(nil)
	if Default() != Allocator(defaultHeap) {
		t.Error("SetDefault(nil) did not restore the heap")
	}
}
