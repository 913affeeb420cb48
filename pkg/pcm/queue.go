package pcm

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/haivivi/circlebuf/pkg/blog"
	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// ErrNegativeOffset is returned by PlaceAt for a negative time offset.
var ErrNegativeOffset = errors.New("pcm: negative offset")

// Queue buffers a single PCM stream. Writes append at the back; reads pop
// from the front. All methods are safe for concurrent use.
type Queue struct {
	format Format

	mu         sync.Mutex
	buf        circlebuf.Buffer
	converters map[Format]*Converter
}

// NewQueue returns an empty queue holding audio in format f.
func NewQueue(f Format) *Queue {
	return &Queue{format: f}
}

// Format returns the queue format.
func (q *Queue) Format() Format {
	return q.format
}

// Write appends a chunk. Silence chunks are expanded into zero samples and
// chunks in another format are converted first.
func (q *Queue) Write(c Chunk) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch c := c.(type) {
	case *SilenceChunk:
		q.buf.PushBackZero(int(q.format.BytesInDuration(c.Duration)))
		return nil
	case *DataChunk:
		data, err := q.convert(c.Format(), c.Data)
		if err != nil {
			return err
		}
		q.buf.PushBack(data)
		return nil
	}
	if c.Format() != q.format {
		return fmt.Errorf("pcm: format mismatch: queue %v, chunk %v", q.format, c.Format())
	}
	_, err := c.WriteTo(&q.buf)
	return err
}

func (q *Queue) convert(f Format, data []byte) ([]byte, error) {
	if f == q.format {
		return data, nil
	}
	cv, ok := q.converters[f]
	if !ok {
		var err error
		if cv, err = NewConverter(f, q.format); err != nil {
			return nil, err
		}
		if q.converters == nil {
			q.converters = make(map[Format]*Converter)
		}
		q.converters[f] = cv
		blog.Debug("pcm: converting", "from", f, "to", q.format)
	}
	return cv.Convert(data)
}

// PlaceAt writes data at offset d from the front of the queue, overwriting
// what is there. If the queue is shorter than d plus the data, it is first
// extended with silence. data must already be in the queue format.
func (q *Queue) PlaceAt(d time.Duration, data []byte) error {
	if d < 0 {
		return ErrNegativeOffset
	}
	pos := q.format.BytesInDuration(d)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Place(int(pos), data)
	return nil
}

// PadSilence extends the queue with silence until it holds at least d of
// audio.
func (q *Queue) PadSilence(d time.Duration) {
	n := q.format.BytesInDuration(d)
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Upsize(int(n))
}

// ReadDuration pops up to d of audio from the front. It returns io.EOF when
// the queue is empty. The returned chunk always holds whole frames.
func (q *Queue) ReadDuration(d time.Duration) (Chunk, error) {
	want := q.format.BytesInDuration(d)
	q.mu.Lock()
	defer q.mu.Unlock()
	n := min(want, q.format.Align(int64(q.buf.Len())))
	if n == 0 {
		if q.buf.Len() > 0 && want > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, io.EOF
	}
	data := make([]byte, n)
	q.buf.PopFront(data)
	return q.format.DataChunk(data), nil
}

// Buffered returns the duration of audio in the queue.
func (q *Queue) Buffered() time.Duration {
	return q.format.Duration(int64(q.buf.Observer().Len()))
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return q.buf.Observer().Len()
}

// Observer returns a lock-free view of the queue occupancy in bytes.
func (q *Queue) Observer() circlebuf.Observer {
	return q.buf.Observer()
}

// Reset drops all queued audio, keeping the allocation.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Reset()
}

// Close releases the queue storage.
func (q *Queue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buf.Free()
	q.converters = nil
	return nil
}
