// Package bmem is the byte allocator used by growable buffers.
//
// An Allocator hands out, resizes and takes back byte slices. The process
// wide default is a Heap; SetDefault swaps it, e.g. for a Heap with a byte
// limit or a test allocator. Exhaustion is not recoverable: an allocator
// that cannot satisfy a request reports it through blog.Crash.
package bmem

import "sync/atomic"

// Allocator allocates byte slices.
//
// Allocate returns a zeroed slice of length n. Reallocate returns a slice of
// length n whose first min(len(p), n) bytes equal p; a nil p behaves like
// Allocate. Release hands p back; p must not be used afterwards.
type Allocator interface {
	Allocate(n int) []byte
	Reallocate(p []byte, n int) []byte
	Release(p []byte)
}

type holder struct{ a Allocator }

var (
	defaultHeap  = &Heap{}
	defaultAlloc atomic.Pointer[holder]
)

// Default returns the process allocator.
func Default() Allocator {
	if h := defaultAlloc.Load(); h != nil {
		return h.a
	}
	return defaultHeap
}

// SetDefault replaces the process allocator. Passing nil restores the
// built-in Heap.
func SetDefault(a Allocator) {
	if a == nil {
		defaultAlloc.Store(nil)
		return
	}
	defaultAlloc.Store(&holder{a: a})
}

// Dup returns a copy of p allocated from the default allocator.
func Dup(p []byte) []byte {
	if p == nil {
		return nil
	}
	out := Default().Allocate(len(p))
	copy(out, p)
	return out
}
