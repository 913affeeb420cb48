package buffer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// Buffer is a blocking byte pipe over a ring buffer. See the package
// documentation for the streaming and tail modes.
type Buffer struct {
	limit int
	ring  bool

	mu         sync.Mutex
	cond       *sync.Cond
	buf        circlebuf.Buffer
	closeWrite bool
	writeErr   error
	closeErr   error
	written    int64
}

// New returns a streaming buffer with capacity bytes reserved up front.
// Write blocks while limit or more bytes are queued; a limit of 0 disables
// blocking.
func New(capacity, limit int) *Buffer {
	b := &Buffer{limit: max(limit, 0)}
	b.cond = sync.NewCond(&b.mu)
	b.buf.Reserve(capacity)
	return b
}

// Ring returns a tail buffer that keeps only the last size bytes written.
func Ring(size int) *Buffer {
	if size <= 0 {
		panic(fmt.Sprintf("buffer: ring size %d must be positive", size))
	}
	b := &Buffer{limit: size, ring: true}
	b.cond = sync.NewCond(&b.mu)
	b.buf.Reserve(size)
	return b
}

// Write queues all of p. In streaming mode it first waits until fewer than
// limit bytes are queued. Returns io.ErrClosedPipe after CloseWrite, or the
// close error after CloseWithError.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.writableLocked(); err != nil {
		return 0, err
	}
	if !b.ring && b.limit > 0 {
		for b.buf.Len() >= b.limit {
			b.cond.Wait()
			if err := b.writableLocked(); err != nil {
				return 0, err
			}
		}
	}

	b.buf.PushBack(p)
	b.written += int64(len(p))
	if over := b.buf.Len() - b.limit; b.ring && over > 0 {
		b.buf.DiscardFront(over)
	}
	b.cond.Broadcast()
	return len(p), nil
}

func (b *Buffer) writableLocked() error {
	if b.closeErr != nil {
		return fmt.Errorf("buffer: write to closed buffer: %w", b.closeErr)
	}
	if b.closeWrite {
		return fmt.Errorf("buffer: write to closed buffer: %w", io.ErrClosedPipe)
	}
	return nil
}

// waitLocked blocks until data is queued. It returns io.EOF (or the error
// given to CloseWriteWithError) once the write side is closed and the
// buffer is empty.
func (b *Buffer) waitLocked() error {
	for {
		if b.closeErr != nil {
			return fmt.Errorf("buffer: read from closed buffer: %w", b.closeErr)
		}
		if b.buf.Len() > 0 {
			return nil
		}
		if b.closeWrite {
			if b.writeErr != nil {
				return b.writeErr
			}
			return io.EOF
		}
		b.cond.Wait()
	}
}

// Read pops up to len(p) bytes, blocking until at least one is queued.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.waitLocked(); err != nil {
		return 0, err
	}
	n := min(len(p), b.buf.Len())
	b.buf.PopFront(p[:n])
	b.cond.Broadcast()
	return n, nil
}

// Peek copies up to len(p) queued bytes without consuming them, blocking
// like Read.
func (b *Buffer) Peek(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.waitLocked(); err != nil {
		return 0, err
	}
	n := min(len(p), b.buf.Len())
	b.buf.PeekFront(p[:n])
	return n, nil
}

// Discard drops up to n bytes from the front and returns how many were
// dropped.
func (b *Buffer) Discard(n int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return 0, fmt.Errorf("buffer: skip from closed buffer: %w", b.closeErr)
	}
	n = min(max(n, 0), b.buf.Len())
	b.buf.DiscardFront(n)
	b.cond.Broadcast()
	return n, nil
}

// Fill copies src into the buffer until EOF, then closes the write side. A
// read error from src is handed to the reader once the buffer drains.
func (b *Buffer) Fill(src io.Reader) (int64, error) {
	chunk := make([]byte, 32<<10)
	var total int64
	for {
		n, err := src.Read(chunk)
		if n > 0 {
			if _, werr := b.Write(chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, b.CloseWrite()
		}
		if err != nil {
			b.CloseWriteWithError(err)
			return total, err
		}
	}
}

// Drain writes queued bytes to dst in pieces of at most chunk bytes until
// the stream ends. Bytes dst does not accept stay queued. A tail buffer
// delivers nothing until its write side is closed.
func (b *Buffer) Drain(dst io.Writer, chunk int) error {
	if chunk <= 0 {
		chunk = 4096
	}
	if b.ring {
		b.mu.Lock()
		for !b.closeWrite {
			b.cond.Wait()
		}
		b.mu.Unlock()
	}

	piece := make([]byte, chunk)
	for {
		n, err := b.Peek(piece)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		wn, werr := dst.Write(piece[:n])
		if _, err := b.Discard(wn); err != nil {
			return err
		}
		if werr != nil {
			return werr
		}
	}
}

// CloseWrite ends the stream. Queued bytes can still be read; after that
// Read returns io.EOF.
func (b *Buffer) CloseWrite() error {
	return b.CloseWriteWithError(nil)
}

// CloseWriteWithError ends the stream like CloseWrite, but once the queued
// bytes are read, Read returns err instead of io.EOF.
func (b *Buffer) CloseWriteWithError(err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeWrite {
		return nil
	}
	b.closeWrite = true
	b.writeErr = err
	b.cond.Broadcast()
	return nil
}

// CloseWithError closes both ends. Blocked and later calls to Read, Write,
// Peek and Discard return an error wrapping err. If err is nil,
// io.ErrClosedPipe is used. Queued bytes remain available via Pending.
func (b *Buffer) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closeErr != nil {
		return nil
	}
	b.closeErr = err
	b.closeWrite = true
	b.cond.Broadcast()
	return nil
}

// Close is CloseWithError(io.ErrClosedPipe).
func (b *Buffer) Close() error {
	return b.CloseWithError(io.ErrClosedPipe)
}

// Error returns the error passed to CloseWithError, if any.
func (b *Buffer) Error() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeErr
}

// Len returns the number of queued bytes.
func (b *Buffer) Len() int {
	return b.buf.Observer().Len()
}

// Observer returns a lock-free view of the queued byte count.
func (b *Buffer) Observer() circlebuf.Observer {
	return b.buf.Observer()
}

// Written returns the total number of bytes accepted by Write, including
// those a tail buffer has since dropped.
func (b *Buffer) Written() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

// Pending returns a copy of the queued bytes as a new circlebuf.Buffer.
func (b *Buffer) Pending() *circlebuf.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := circlebuf.New(nil)
	p.PushBack(b.buf.Bytes())
	return p
}
