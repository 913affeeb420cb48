package cli

import (
	"bytes"
	"strings"
	"sync"

	"github.com/haivivi/circlebuf/pkg/circlebuf"
)

// LogWriter keeps the last bytes of a log stream for display. It is an
// io.Writer and safe for concurrent use.
type LogWriter struct {
	max int
	ch  chan string

	mu        sync.Mutex
	tail      circlebuf.Buffer
	truncated bool
}

// NewLogWriter returns a writer keeping at most maxBytes of output.
func NewLogWriter(maxBytes int) *LogWriter {
	w := &LogWriter{
		max: maxBytes,
		ch:  make(chan string, 100),
	}
	w.tail.Reserve(maxBytes)
	return w
}

// Write appends p, dropping the oldest bytes beyond the limit, and announces
// each complete line on Channel without blocking.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.tail.PushBack(p)
	if over := w.tail.Len() - w.max; over > 0 {
		w.tail.DiscardFront(over)
		w.truncated = true
	}
	w.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		select {
		case w.ch <- line:
		default:
		}
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first. A line cut by truncation
// is left out.
func (w *LogWriter) Lines() []string {
	w.mu.Lock()
	data := w.tail.Bytes()
	truncated := w.truncated
	w.mu.Unlock()

	if truncated {
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			data = data[i+1:]
		} else {
			data = nil
		}
	}
	data = bytes.TrimRight(data, "\n")
	if len(data) == 0 {
		return nil
	}
	return strings.Split(string(data), "\n")
}

// Len returns the number of retained bytes.
func (w *LogWriter) Len() int {
	return w.tail.Observer().Len()
}

// Channel delivers written lines. Lines are dropped when nobody reads.
func (w *LogWriter) Channel() <-chan string {
	return w.ch
}
