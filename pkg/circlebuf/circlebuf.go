package circlebuf

import (
	"fmt"
	"sync/atomic"

	"github.com/haivivi/circlebuf/pkg/bmem"
)

// Buffer is a growable circular byte buffer.
//
// The zero value is an empty buffer using bmem.Default(). A Buffer must not
// be copied after first use. Only one goroutine may call its methods at a
// time; other goroutines may only use an Observer.
type Buffer struct {
	size atomic.Int64

	data  []byte
	start offset
	end   offset
	alloc bmem.Allocator
}

// New returns an empty buffer that allocates from a. A nil a selects
// bmem.Default() at first growth.
func New(a bmem.Allocator) *Buffer {
	return &Buffer{alloc: a}
}

// Len returns the number of valid bytes.
func (b *Buffer) Len() int {
	return int(b.size.Load())
}

// Cap returns the size of the backing store.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Observer returns a read-only handle on the buffer length.
func (b *Buffer) Observer() Observer {
	return Observer{size: &b.size}
}

func (b *Buffer) allocator() bmem.Allocator {
	if b.alloc == nil {
		b.alloc = bmem.Default()
	}
	return b.alloc
}

// Free releases the backing store and returns the buffer to its zero
// state. The allocator is kept.
func (b *Buffer) Free() {
	if b.data != nil {
		b.allocator().Release(b.data)
	}
	b.data = nil
	b.start, b.end = 0, 0
	b.size.Store(0)
}

// Reset drops all content but keeps the backing store.
func (b *Buffer) Reset() {
	b.start, b.end = 0, 0
	b.size.Store(0)
}

// Reserve grows the backing store to at least capacity bytes. Content is
// unchanged.
func (b *Buffer) Reserve(capacity int) {
	if capacity <= len(b.data) {
		return
	}
	b.grow(capacity)
}

// ensureCapacity grows the backing store so it can hold size bytes.
func (b *Buffer) ensureCapacity(size int) {
	if size <= len(b.data) {
		return
	}
	b.grow(max(len(b.data)*2, size))
}

func (b *Buffer) grow(capacity int) {
	old := len(b.data)
	b.data = b.allocator().Reallocate(b.data, capacity)
	b.reorder(old, capacity)
	b.end = b.start.add(b.Len(), capacity)
}

// reorder keeps a wrapped region wrapped around the new physical end: the
// run [start, oldCap) moves forward by the capacity delta.
func (b *Buffer) reorder(oldCap, newCap int) {
	if b.Len() == 0 || b.start == 0 || b.end > b.start {
		return
	}
	delta := newCap - oldCap
	s := int(b.start)
	copy(b.data[s+delta:newCap], b.data[s:oldCap])
	b.start += offset(delta)
}

// Upsize grows the logical length to size, appending zero bytes. Sizes not
// larger than Len are ignored.
func (b *Buffer) Upsize(size int) {
	cur := b.Len()
	if size <= cur {
		return
	}
	b.pushBack(nil, size-cur)
}

// Place overwrites len(p) bytes starting at logical offset pos, upsizing
// first when the write reaches past Len.
func (b *Buffer) Place(pos int, p []byte) {
	if pos < 0 {
		panic(fmt.Sprintf("circlebuf: place at negative offset %d", pos))
	}
	if end := pos + len(p); end > b.Len() {
		b.Upsize(end)
	}
	if len(p) == 0 {
		return
	}
	b.write(b.start.add(pos, len(b.data)), p)
}

// PushBack appends p after the last byte.
func (b *Buffer) PushBack(p []byte) {
	b.pushBack(p, len(p))
}

// PushBackZero appends n zero bytes.
func (b *Buffer) PushBackZero(n int) {
	checkLen("push", n)
	b.pushBack(nil, n)
}

// PushFront prepends p before the first byte.
func (b *Buffer) PushFront(p []byte) {
	b.pushFront(p, len(p))
}

// PushFrontZero prepends n zero bytes.
func (b *Buffer) PushFrontZero(n int) {
	checkLen("push", n)
	b.pushFront(nil, n)
}

// pushBack appends p, or n zero bytes when p is nil.
func (b *Buffer) pushBack(p []byte, n int) {
	if n == 0 {
		return
	}
	size := b.Len() + n
	b.ensureCapacity(size)
	b.fill(b.end, p, n)
	b.end = b.end.add(n, len(b.data))
	b.size.Store(int64(size))
}

// pushFront prepends p, or n zero bytes when p is nil.
func (b *Buffer) pushFront(p []byte, n int) {
	if n == 0 {
		return
	}
	cur := b.Len()
	b.ensureCapacity(cur + n)
	if cur == 0 {
		b.start = 0
		b.end = offset(0).add(n, len(b.data))
	} else {
		// Retreating past offset 0 wraps the head onto the tail of the
		// backing store; fill splits the copy accordingly.
		b.start = b.start.sub(n, len(b.data))
	}
	b.fill(b.start, p, n)
	b.size.Store(int64(cur + n))
}

// PeekFront copies the first len(p) bytes into p.
func (b *Buffer) PeekFront(p []byte) {
	b.check("peek", len(p))
	b.read(b.start, p)
}

// PeekBack copies the last len(p) bytes into p.
func (b *Buffer) PeekBack(p []byte) {
	b.check("peek", len(p))
	b.read(b.end.sub(len(p), len(b.data)), p)
}

// PopFront copies the first len(p) bytes into p and removes them.
func (b *Buffer) PopFront(p []byte) {
	b.PeekFront(p)
	b.removeFront(len(p))
}

// PopBack copies the last len(p) bytes into p and removes them.
func (b *Buffer) PopBack(p []byte) {
	b.PeekBack(p)
	b.removeBack(len(p))
}

// DiscardFront removes the first n bytes.
func (b *Buffer) DiscardFront(n int) {
	b.check("discard", n)
	b.removeFront(n)
}

// DiscardBack removes the last n bytes.
func (b *Buffer) DiscardBack(n int) {
	b.check("discard", n)
	b.removeBack(n)
}

func (b *Buffer) removeFront(n int) {
	if n == 0 {
		return
	}
	size := b.Len() - n
	if size == 0 {
		b.start, b.end = 0, 0
	} else {
		b.start = b.start.add(n, len(b.data))
	}
	b.size.Store(int64(size))
}

func (b *Buffer) removeBack(n int) {
	if n == 0 {
		return
	}
	size := b.Len() - n
	if size == 0 {
		b.start, b.end = 0, 0
	} else {
		b.end = b.end.sub(n, len(b.data))
	}
	b.size.Store(int64(size))
}

// At returns the contiguous run of stored bytes beginning at logical offset
// i. The slice aliases the backing store and is invalidated by any call
// that modifies the buffer. ok is false when i is out of range.
func (b *Buffer) At(i int) (run []byte, ok bool) {
	size := b.Len()
	if i < 0 || i >= size {
		return nil, false
	}
	first, _ := spans(b.start.add(i, len(b.data)), size-i, len(b.data))
	return b.data[first.lo:first.hi], true
}

// Bytes returns a copy of the content in logical order.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, b.Len())
	b.read(b.start, out)
	return out
}

func (b *Buffer) check(op string, n int) {
	checkLen(op, n)
	if size := b.Len(); n > size {
		panic(fmt.Sprintf("circlebuf: %s of %d bytes exceeds length %d", op, n, size))
	}
}

func checkLen(op string, n int) {
	if n < 0 {
		panic(fmt.Sprintf("circlebuf: %s of negative length %d", op, n))
	}
}

// fill writes p at off, or n zero bytes when p is nil.
func (b *Buffer) fill(off offset, p []byte, n int) {
	if p == nil {
		first, second := spans(off, n, len(b.data))
		clear(b.data[first.lo:first.hi])
		clear(b.data[second.lo:second.hi])
		return
	}
	b.write(off, p)
}

func (b *Buffer) write(off offset, p []byte) {
	first, second := spans(off, len(p), len(b.data))
	n := copy(b.data[first.lo:first.hi], p)
	copy(b.data[second.lo:second.hi], p[n:])
}

func (b *Buffer) read(off offset, p []byte) {
	first, second := spans(off, len(p), len(b.data))
	n := copy(p, b.data[first.lo:first.hi])
	copy(p[n:], b.data[second.lo:second.hi])
}
