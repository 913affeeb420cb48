package circlebuf

import "io"

var (
	_ io.Writer   = (*Buffer)(nil)
	_ io.Reader   = (*Buffer)(nil)
	_ io.WriterTo = (*Buffer)(nil)
)

// Write appends p. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.PushBack(p)
	return len(p), nil
}

// Read pops up to len(p) bytes from the front. It returns io.EOF when the
// buffer is empty and p is not.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := min(len(p), b.Len())
	if n == 0 {
		return 0, io.EOF
	}
	b.PopFront(p[:n])
	return n, nil
}

// WriteTo drains the buffer into w without an intermediate copy. Bytes
// accepted by w are removed even when w reports an error.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for b.Len() > 0 {
		run, _ := b.At(0)
		n, err := w.Write(run)
		if n > 0 {
			b.DiscardFront(n)
			total += int64(n)
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
