package bmem

import (
	"sync/atomic"

	"github.com/haivivi/circlebuf/pkg/blog"
)

// Heap allocates from the Go heap and keeps live-allocation statistics.
//
// The zero value is unlimited and ready to use. Heap is safe for concurrent
// use.
type Heap struct {
	// Limit caps the number of live bytes. Zero means no limit. A request
	// that would exceed it is treated as exhaustion.
	Limit int64

	allocs atomic.Int64
	inUse  atomic.Int64
}

// Allocate returns a zeroed slice of n bytes.
func (h *Heap) Allocate(n int) []byte {
	if n < 0 {
		blog.Crash("bmem: negative allocation of %d bytes", n)
	}
	h.charge(int64(n))
	h.allocs.Add(1)
	return make([]byte, n)
}

// Reallocate resizes p to n bytes, preserving its prefix. Bytes past the
// old length are zero.
func (h *Heap) Reallocate(p []byte, n int) []byte {
	if p == nil {
		return h.Allocate(n)
	}
	if n < 0 {
		blog.Crash("bmem: negative reallocation of %d bytes", n)
	}
	h.charge(int64(n - len(p)))
	out := make([]byte, n)
	copy(out, p)
	return out
}

// Release returns p to the heap accounting.
func (h *Heap) Release(p []byte) {
	if p == nil {
		return
	}
	h.allocs.Add(-1)
	h.inUse.Add(-int64(len(p)))
}

// NumAllocs returns the number of live allocations.
func (h *Heap) NumAllocs() int64 {
	return h.allocs.Load()
}

// InUse returns the number of live bytes.
func (h *Heap) InUse() int64 {
	return h.inUse.Load()
}

func (h *Heap) charge(delta int64) {
	total := h.inUse.Add(delta)
	if h.Limit > 0 && delta > 0 && total > h.Limit {
		h.inUse.Add(-delta)
		blog.Crash("bmem: out of memory while trying to allocate %d bytes (limit %d, in use %d)",
			delta, h.Limit, total-delta)
	}
}

// Compile-time interface check.
var _ Allocator = (*Heap)(nil)
