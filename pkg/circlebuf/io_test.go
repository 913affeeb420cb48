package circlebuf

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
)

func TestBuffer_ReadWrite(t *testing.T) {
	var b Buffer
	n, err := b.Write([]byte("hello, "))
	if err != nil || n != 7 {
		t.Fatalf("Write=%d,%v", n, err)
	}
	b.Write([]byte("ring"))

	got, err := io.ReadAll(&b)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(got) != "hello, ring" {
		t.Errorf("got=%q", got)
	}

	if n, err := b.Read(nil); n != 0 || err != nil {
		t.Errorf("Read(nil)=%d,%v", n, err)
	}
	if _, err := b.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestBuffer_ReadPartial(t *testing.T) {
	var b Buffer
	b.Write([]byte{1, 2, 3, 4, 5})
	p := make([]byte, 2)
	n, _ := b.Read(p)
	if n != 2 || !bytes.Equal(p, []byte{1, 2}) || b.Len() != 3 {
		t.Errorf("n=%d p=%v len=%d", n, p, b.Len())
	}
}

func TestBuffer_WriteTo(t *testing.T) {
	var b Buffer
	b.Reserve(8)
	b.PushBack(seq(0, 8))
	b.DiscardFront(5)
	b.PushBack(seq(8, 4))

	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	if err != nil || n != 7 {
		t.Fatalf("WriteTo=%d,%v", n, err)
	}
	if !bytes.Equal(out.Bytes(), seq(5, 7)) {
		t.Errorf("got=%v", out.Bytes())
	}
	if b.Len() != 0 {
		t.Errorf("len=%d", b.Len())
	}
}

type limitWriter struct {
	n   int
	out []byte
}

var errFull = errors.New("full")

func (w *limitWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		w.out = append(w.out, p[:w.n]...)
		n := w.n
		w.n = 0
		return n, errFull
	}
	w.n -= len(p)
	w.out = append(w.out, p...)
	return len(p), nil
}

func TestBuffer_WriteToError(t *testing.T) {
	var b Buffer
	b.PushBack(seq(0, 6))
	w := &limitWriter{n: 4}
	n, err := b.WriteTo(w)
	if err != errFull || n != 4 {
		t.Fatalf("WriteTo=%d,%v", n, err)
	}
	if got := front(t, &b); !bytes.Equal(got, []byte{4, 5}) {
		t.Errorf("remaining=%v", got)
	}
}

func TestObserver(t *testing.T) {
	var zero Observer
	if zero.Len() != 0 {
		t.Errorf("zero observer len=%d", zero.Len())
	}

	var b Buffer
	obs := b.Observer()
	b.PushBack(seq(0, 3))
	if obs.Len() != 3 {
		t.Errorf("len=%d", obs.Len())
	}
	copied := obs
	b.DiscardFront(1)
	if copied.Len() != 2 {
		t.Errorf("copied observer len=%d", copied.Len())
	}
}

func TestObserver_Concurrent(t *testing.T) {
	var b Buffer
	obs := b.Observer()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	var maxSeen int
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if n := obs.Len(); n > maxSeen {
				maxSeen = n
			}
			if n := obs.Len(); n < 0 || n > 64 {
				t.Errorf("observed len=%d", n)
				return
			}
		}
	}()

	chunk := make([]byte, 16)
	for range 1000 {
		b.PushBack(seq(0, 16))
		b.PushBack(seq(16, 16))
		b.PopFront(chunk)
		b.PopBack(chunk)
	}
	close(done)
	wg.Wait()

	if b.Len() != 0 {
		t.Errorf("len=%d", b.Len())
	}
	if maxSeen > 32 {
		t.Errorf("max observed=%d", maxSeen)
	}
}
